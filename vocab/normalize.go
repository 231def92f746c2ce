package vocab

import (
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/tokenguide/tokenguide/fsm"
)

// llamaByteToken matches the single-byte placeholder tokens llama-style
// tokenizers emit for bytes with no valid UTF-8 decoding on their own.
var llamaByteToken = regexp.MustCompile(`^<0x[0-9A-F]{2}>$`)

// replacementSeq matches tokens that are themselves one or more literal
// U+FFFD replacement characters (rather than a mis-decoded byte sequence).
// The "▁*" prefix handles Gemma/GPT-SW3, the "\.*" suffix handles NorwAI.
var replacementSeq = regexp.MustCompile(`^▁*\x{FFFD}+\.*$`)

// Normalize reduces a Tokenizer's vocabulary into a Vocabulary of decoded
// byte strings, per spec.md section 4.4.
func Normalize(t Tokenizer) (*Vocabulary, error) {
	v := newVocabulary(t.EOSTokenID())
	special := t.SpecialTokens()
	raw := t.Vocabulary()

	tokens := make([]string, 0, len(raw))
	for tok := range raw {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	for _, tok := range tokens {
		id := raw[tok]
		if _, skip := special[tok]; skip {
			continue
		}

		s := t.TokenToString(tok)
		if s == "" {
			v.empty = append(v.empty, id)
			continue
		}

		var decoded string
		switch {
		case !utf8.ValidString(tok):
			// The raw dictionary form already holds bytes rather than
			// decoded text (e.g. Qwen-style BPE vocabularies).
			decoded = fsm.EscapeBytes([]byte(tok))

		case containsReplacementChar(s) && !replacementSeq.MatchString(tok):
			bs, err := recoverBytes(tok)
			if err != nil {
				return nil, newBadToken(tok, id)
			}
			decoded = fsm.EscapeBytes(bs)

		default:
			// Ordinary decoded text still needs to be expressed in Sigma_b
			// (byte-escape atoms), the same alphabet C2's byte-level FSM
			// uses, so the index builder can walk every vocabulary string
			// identically regardless of which branch produced it.
			decoded = fsm.EscapeBytes([]byte(s))
		}

		v.add(decoded, id)
	}

	return v, nil
}

func containsReplacementChar(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError {
			return true
		}
	}
	return false
}

// recoverBytes inverts a tokenizer's internal escaping of the raw token
// form (not its decoded string) back into the bytes it represents: llama
// tokenizers spell each byte >= 0x80 as "<0xXX>"; GPT-2-style BPE
// tokenizers instead map every byte through a reversible byte<->unicode
// table, so each rune of the raw token inverts independently.
func recoverBytes(token string) ([]byte, error) {
	if llamaByteToken.MatchString(token) {
		v, err := strconv.ParseUint(token[3:5], 16, 8)
		if err != nil {
			return nil, err
		}
		return []byte{byte(v)}, nil
	}

	bs := make([]byte, 0, utf8.RuneCountInString(token))
	for _, r := range token {
		b, ok := unicodeToByte(r)
		if !ok {
			return nil, BadToken
		}
		bs = append(bs, b)
	}
	return bs, nil
}
