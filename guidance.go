package tokenguide

import (
	"context"
	"runtime"

	"github.com/tokenguide/tokenguide/fsm"
	"github.com/tokenguide/tokenguide/guide"
	"github.com/tokenguide/tokenguide/index"
	"github.com/tokenguide/tokenguide/regex"
	"github.com/tokenguide/tokenguide/vocab"
)

// Builder holds construction-time options and orchestrates the pipeline:
// parse (or accept) a char-level FSM, normalize a tokenizer's vocabulary,
// expand and canonicalize the byte-level DFA, and build the index.
// Mirrors the teacher's Compiler: a struct of options with no required
// fields except what's passed to the build call itself.
type Builder struct {
	// MaxParallelism bounds how many index-builder states are scanned
	// concurrently. If unspecified or non-positive,
	// runtime.GOMAXPROCS(-1) is used.
	MaxParallelism int

	// FrozenTokens are literal token texts that are also matched as a
	// single atomic unit against the source char-level FSM, in addition to
	// the ordinary byte-by-byte walk through the canonical DFA (spec.md section
	// 4.4's frozen_tokens; see DESIGN.md for how this differs from the
	// original's alphabet-level treatment).
	FrozenTokens map[string]struct{}

	// Cache, if set, memoizes BuildIndex results keyed by (pattern,
	// tokenizer fingerprint). Nil disables memoization. See Cache and
	// vocab.Fingerprint.
	Cache *Cache
}

// BuildIndex parses pattern and builds a Guide over tokenizer's vocabulary
// (spec.md section 6, build_index).
func (b *Builder) BuildIndex(ctx context.Context, pattern string, tokenizer vocab.Tokenizer) (*guide.Guide, error) {
	if b.Cache != nil {
		if g, ok := b.Cache.get(pattern, tokenizer); ok {
			return g, nil
		}
	}

	node, err := regex.Parse(pattern)
	if err != nil {
		return nil, err
	}
	nfa := regex.Compile(node)
	char := regex.Determinize(nfa)

	g, err := b.build(ctx, char, tokenizer)
	if err != nil {
		return nil, err
	}

	if b.Cache != nil {
		b.Cache.put(pattern, tokenizer, g)
	}
	return g, nil
}

// BuildIndexFromFSM is BuildIndex given an already-compiled char-level FSM
// (spec.md section 6, build_index_from_fsm), skipping parsing. Results
// from this entry point are not cached, since Builder.Cache keys on
// pattern text.
func (b *Builder) BuildIndexFromFSM(ctx context.Context, char *regex.CharFSM, tokenizer vocab.Tokenizer) (*guide.Guide, error) {
	return b.build(ctx, char, tokenizer)
}

func (b *Builder) build(ctx context.Context, char *regex.CharFSM, tokenizer vocab.Tokenizer) (*guide.Guide, error) {
	v, err := vocab.Normalize(tokenizer)
	if err != nil {
		return nil, err
	}

	byteFSM := fsm.Expand(char, fsm.ExpandOptions{})
	dfa, oldToNew := fsm.Canonicalize(byteFSM)

	par := int64(b.MaxParallelism)
	if par <= 0 {
		par = int64(runtime.GOMAXPROCS(-1))
	}
	opts := []index.Option{index.WithMaxParallelism(par)}

	if len(b.FrozenTokens) > 0 {
		frozenIDs := make(map[string][]vocab.TokenID, len(b.FrozenTokens))
		for text := range b.FrozenTokens {
			if ids, ok := v.IDsFor(text); ok {
				frozenIDs[text] = ids
			}
		}
		if len(frozenIDs) > 0 {
			opts = append(opts, index.WithFrozenTokens(index.FrozenTokens{
				Source:   char,
				OldToNew: oldToNew,
				Tokens:   frozenIDs,
			}))
		}
	}

	idx, err := index.Build(ctx, dfa, v, opts...)
	if err != nil {
		return nil, err
	}

	return guide.New(idx, dfa, tokenizer.EOSTokenID()), nil
}
