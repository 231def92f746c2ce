// Package vocab normalizes a tokenizer's vocabulary into decoded byte
// strings suitable for walking a fsm.DFA (spec.md section 4.4): special
// tokens are excluded, empty-string tokens are bucketed separately, and
// byte-fallback/replacement-sequence tokens are recovered back into their
// original bytes.
package vocab

import "fmt"

// TokenID identifies a vocabulary entry. It mirrors the integer token ids
// tokenizer libraries hand back from encode/decode.
type TokenID int32

func (id TokenID) String() string {
	return fmt.Sprintf("token#%d", int32(id))
}

// Tokenizer is the subset of a tokenizer's surface that vocabulary
// normalization needs. Implementations typically wrap a Hugging Face
// `tokenizers` or SentencePiece model.
type Tokenizer interface {
	// Vocabulary maps every token's raw dictionary form to its id. A
	// token's raw form may hold raw, non-UTF-8 bytes rather than decoded
	// text, for BPE tokenizers whose vocabulary stores tokens as bytes;
	// Normalize recognizes those by their invalid UTF-8.
	Vocabulary() map[string]TokenID

	// SpecialTokens is the set of raw token forms (BOS/EOS/PAD/etc.)
	// excluded from the regular-language index.
	SpecialTokens() map[string]struct{}

	// EOSTokenID is the id used to signal that generation may stop.
	EOSTokenID() TokenID

	// TokenToString converts a token's raw dictionary form into the text
	// it decodes to, reversing any tokenizer-internal escaping (e.g. `Ġ`
	// for a leading space in GPT-2-style BPE).
	TokenToString(token string) string
}
