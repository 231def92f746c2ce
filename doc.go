// Package tokenguide constrains an LLM's next-token sampling to the
// language of a regular expression. It wires together the six-stage
// pipeline described in spec.md: parsing a regex into an AST (package
// regex), compiling it to a character-level DFA, expanding that to a
// byte-level DFA (package fsm), normalizing a tokenizer's vocabulary
// (package vocab), building a per-state token index (package index), and
// serving it at generation time through a read-only Guide (package
// guide).
//
// Most callers only need Builder.BuildIndex:
//
//	b := &tokenguide.Builder{}
//	g, err := b.BuildIndex(ctx, `[0-9]+`, myTokenizer)
//	tokens := g.AllowedTokens(g.InitialState())
package tokenguide
