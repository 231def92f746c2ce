package fsm

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func seqMatches(seq byteSeq, b []byte) bool {
	if len(seq) != len(b) {
		return false
	}
	for i, r := range seq {
		if b[i] < r.Lo || b[i] > r.Hi {
			return false
		}
	}
	return true
}

func checkRange(t *testing.T, lo, hi rune) {
	t.Helper()
	seqs := utf8Sequences(lo, hi)
	for r := lo; r <= hi; r++ {
		encoded := make([]byte, utf8.RuneLen(r))
		utf8.EncodeRune(encoded, r)
		matches := 0
		for _, seq := range seqs {
			if seqMatches(seq, encoded) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("rune %U: expected exactly 1 matching byteSeq, got %d (seqs=%v)", r, matches, seqs)
		}
	}
}

func TestUTF8SequencesASCII(t *testing.T) {
	t.Parallel()
	checkRange(t, 'a', 'z')
}

func TestUTF8SequencesTwoByte(t *testing.T) {
	t.Parallel()
	checkRange(t, 0x80, 0x2FF)
}

func TestUTF8SequencesThreeByte(t *testing.T) {
	t.Parallel()
	checkRange(t, 0x1000, 0x10FF)
}

func TestUTF8SequencesFourByte(t *testing.T) {
	t.Parallel()
	checkRange(t, 0x10000, 0x100FF)
}

func TestUTF8SequencesSpanningLengths(t *testing.T) {
	t.Parallel()
	checkRange(t, 0x41, 0x900)
}

func TestUTF8SequencesSingleCodepoint(t *testing.T) {
	t.Parallel()
	checkRange(t, 0x4E2D, 0x4E2D) // 中
}

func TestUTF8SequencesNoDoubleCountAcrossAdjacentCalls(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, utf8Sequences(0, 0x10FFFF))
	checkRange(t, 0x7F, 0x80) // straddles the 1-byte/2-byte boundary
}
