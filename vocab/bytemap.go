package vocab

import "sync"

// gpt2BytesToUnicode reproduces the reversible byte<->unicode mapping used
// by GPT-2-style BPE tokenizers, ported from
// transformers.models.gpt2.tokenization_gpt2.bytes_to_unicode (and in turn
// from gpt2_bytes_to_unicode in the original source this package is based
// on): printable Latin-1 bytes map to themselves, and the remaining bytes
// map to private-use-adjacent code points starting at U+0100, so that
// every byte has some visible, round-trippable character.
func gpt2BytesToUnicode() [256]rune {
	var table [256]rune
	assigned := make(map[int]bool, 256)

	addRange := func(lo, hi int) {
		for b := lo; b <= hi; b++ {
			table[b] = rune(b)
			assigned[b] = true
		}
	}
	addRange('!', '~')
	addRange(0xA1, 0xAC)
	addRange(0xAE, 0xFF)

	n := 0
	for b := 0; b < 256; b++ {
		if !assigned[b] {
			table[b] = rune(256 + n)
			n++
		}
	}
	return table
}

var (
	bytesToUnicodeOnce sync.Once
	bytesToUnicodeTbl  [256]rune
	unicodeToBytesTbl  map[rune]byte
)

func byteToUnicode() [256]rune {
	bytesToUnicodeOnce.Do(func() {
		bytesToUnicodeTbl = gpt2BytesToUnicode()
		unicodeToBytesTbl = make(map[rune]byte, 256)
		for b, r := range bytesToUnicodeTbl {
			unicodeToBytesTbl[r] = byte(b)
		}
	})
	return bytesToUnicodeTbl
}

// unicodeToByte returns the byte that r encodes under the GPT-2 byte<->
// unicode mapping, and whether r is part of that mapping at all.
func unicodeToByte(r rune) (byte, bool) {
	byteToUnicode() // ensure initialized
	b, ok := unicodeToBytesTbl[r]
	return b, ok
}
