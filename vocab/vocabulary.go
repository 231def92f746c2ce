package vocab

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/tokenguide/tokenguide/fsm"
	"github.com/tokenguide/tokenguide/internal/intern"
)

// DuplicateTokenID is returned when the same token id is associated with
// more than one decoded string.
var DuplicateTokenID = errors.New("vocab: duplicate token id")

// Vocabulary is a tokenizer's vocabulary reduced to the form the index
// builder needs: decoded byte strings (see fsm.ByteEscape), deduplicated
// via interning, each mapped to the token ids that decode to it.
type Vocabulary struct {
	strings *intern.Table
	byID    map[intern.ID][]TokenID
	empty   []TokenID
	eos     TokenID
}

func newVocabulary(eos TokenID) *Vocabulary {
	return &Vocabulary{
		strings: &intern.Table{},
		byID:    map[intern.ID][]TokenID{},
		eos:     eos,
	}
}

func (v *Vocabulary) add(decoded string, id TokenID) {
	sid := v.strings.Intern(decoded)
	v.byID[sid] = append(v.byID[sid], id)
}

// FromMap builds a Vocabulary directly from already-decoded byte strings,
// bypassing Normalize. Useful when a caller already has a reduced
// vocabulary (e.g. loaded from a cache) or in tests.
func FromMap(tokens map[string][]TokenID, eos TokenID) (*Vocabulary, error) {
	v := newVocabulary(eos)
	seen := make(map[TokenID]bool)
	// Sort keys for deterministic iteration, so Vocabulary.Strings()
	// yields interned ids in a stable order across calls.
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, s := range keys {
		for _, id := range tokens[s] {
			if seen[id] {
				return nil, fmt.Errorf("%w: %d", DuplicateTokenID, id)
			}
			seen[id] = true
			v.add(s, id)
		}
	}
	return v, nil
}

// EOSTokenID returns the end-of-sequence token id.
func (v *Vocabulary) EOSTokenID() TokenID {
	return v.eos
}

// EmptyTokenIDs returns the ids of tokens that decode to the empty string,
// in the sorted order of their raw token forms. These never consume a
// byte; the index builder does not consult them.
func (v *Vocabulary) EmptyTokenIDs() []TokenID {
	return v.empty
}

// Len returns the number of distinct decoded strings in the vocabulary.
func (v *Vocabulary) Len() int {
	return v.strings.Len()
}

// Strings iterates every distinct decoded string along with the token ids
// that decode to it.
func (v *Vocabulary) Strings() iter.Seq2[string, []TokenID] {
	return func(yield func(string, []TokenID) bool) {
		for id := 1; id <= v.strings.Len(); id++ {
			sid := intern.ID(id)
			if !yield(v.strings.Value(sid), v.byID[sid]) {
				return
			}
		}
	}
}

// IDsFor returns the token ids that decode to the given raw (undecoded)
// text, and whether any were found. text is escaped with fsm.EscapeBytes
// internally to match how Strings reports decoded entries.
func (v *Vocabulary) IDsFor(text string) ([]TokenID, bool) {
	sid, ok := v.strings.Lookup(fsm.EscapeBytes([]byte(text)))
	if !ok {
		return nil, false
	}
	ids, ok := v.byID[sid]
	return ids, ok
}

// Fingerprint returns a stable digest of a tokenizer's vocabulary, special
// tokens, and EOS id, suitable for use as a cache key. It does not cover
// TokenToString, so two tokenizers that decode the same raw tokens
// differently share a fingerprint.
func Fingerprint(t Tokenizer) string {
	vocabulary := t.Vocabulary()
	tokens := make([]string, 0, len(vocabulary))
	for tok := range vocabulary {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	h := sha256.New()
	for _, tok := range tokens {
		fmt.Fprintf(h, "%s\x00%d\n", tok, vocabulary[tok])
	}

	special := make([]string, 0, len(t.SpecialTokens()))
	for tok := range t.SpecialTokens() {
		special = append(special, tok)
	}
	sort.Strings(special)
	for _, tok := range special {
		fmt.Fprintf(h, "special:%s\n", tok)
	}

	fmt.Fprintf(h, "eos:%d\n", t.EOSTokenID())
	return hex.EncodeToString(h.Sum(nil))
}
