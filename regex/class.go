package regex

import (
	"unicode"

	"github.com/tokenguide/tokenguide/reporter"
)

// parseClass parses a `[...]` character class: an optional leading `^` for
// negation, then a run of single characters, `a-z` ranges, and escape
// classes (`\d`, `\w`, `\s` and their negations), terminated by `]`.
func (p *parser) parseClass(flags Flags) (Node, error) {
	pos := p.pos()
	p.advance() // '['

	negated := p.consumeByte('^')

	var ranges []RuneRange
	first := true
	for {
		if p.atEnd() {
			return nil, newBadPattern(pos, "unterminated character class")
		}
		if b, _ := p.peekByte(); b == ']' && !first {
			p.advance()
			break
		}
		first = false

		if b, _ := p.peekByte(); b == '\\' {
			rs, err := p.parseClassEscape()
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, rs...)
			continue
		}

		lo := p.advance()
		if b, ok := p.peekByte(); ok && b == '-' {
			save := *p
			p.advance() // '-'
			if b2, ok2 := p.peekByte(); ok2 && b2 != ']' {
				hi := p.advance()
				if hi < lo {
					return nil, newBadPattern(pos, "invalid range %c-%c", lo, hi)
				}
				ranges = append(ranges, RuneRange{Lo: lo, Hi: hi})
				continue
			}
			*p = save
		}
		ranges = append(ranges, RuneRange{Lo: lo, Hi: lo})
	}

	if flags.CaseInsensitive {
		ranges = foldRanges(ranges)
	}
	return &Class{Ranges: ranges, Negated: negated}, nil
}

// parseEscape parses a `\X` escape appearing outside a character class.
func (p *parser) parseEscape(flags Flags) (Node, error) {
	pos := p.pos()
	ranges, r, isClass, err := p.parseEscapeBody(pos)
	if err != nil {
		return nil, err
	}
	if isClass {
		return &Class{Ranges: ranges}, nil
	}
	return literalNode(r, flags), nil
}

// parseClassEscape parses a `\X` escape appearing inside `[...]`.
func (p *parser) parseClassEscape() ([]RuneRange, error) {
	pos := p.pos()
	ranges, r, isClass, err := p.parseEscapeBody(pos)
	if err != nil {
		return nil, err
	}
	if isClass {
		return ranges, nil
	}
	return []RuneRange{{Lo: r, Hi: r}}, nil
}

// parseEscapeBody consumes the backslash and its payload, returning either a
// set of ranges (isClass true, for \d \D \w \W \s \S) or a single rune
// (isClass false, for all other escapes).
func (p *parser) parseEscapeBody(pos reporter.Position) ([]RuneRange, rune, bool, error) {
	p.advance() // '\\'
	if p.atEnd() {
		return nil, 0, false, newBadPattern(pos, "trailing backslash")
	}
	b, _ := p.peekByte()
	switch b {
	case 'd':
		p.advance()
		return []RuneRange{{Lo: '0', Hi: '9'}}, 0, true, nil
	case 'D':
		p.advance()
		return negateASCII([]RuneRange{{Lo: '0', Hi: '9'}}), 0, true, nil
	case 'w':
		p.advance()
		return wordRanges(), 0, true, nil
	case 'W':
		p.advance()
		return negateASCII(wordRanges()), 0, true, nil
	case 's':
		p.advance()
		return spaceRanges(), 0, true, nil
	case 'S':
		p.advance()
		return negateASCII(spaceRanges()), 0, true, nil
	case 'b', 'B':
		return nil, 0, false, newUnsupportedPattern(pos, `\%c word boundary assertion is not a regular-language construct`, rune(b))
	case 'n':
		p.advance()
		return nil, '\n', false, nil
	case 't':
		p.advance()
		return nil, '\t', false, nil
	case 'r':
		p.advance()
		return nil, '\r', false, nil
	case 'f':
		p.advance()
		return nil, '\f', false, nil
	case 'v':
		p.advance()
		return nil, '\v', false, nil
	case '0':
		p.advance()
		return nil, 0, false, nil
	case 'x':
		return p.parseHexEscape(pos)
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return nil, 0, false, newUnsupportedPattern(pos, "backreferences are not a regular-language construct")
	default:
		return nil, p.advance(), false, nil
	}
}

// parseHexEscape parses `\xHH` or `\x{HHHH}`.
func (p *parser) parseHexEscape(pos reporter.Position) ([]RuneRange, rune, bool, error) {
	p.advance() // 'x'
	if p.consumeByte('{') {
		start := p.offset
		for {
			b, ok := p.peekByte()
			if !ok {
				return nil, 0, false, newBadPattern(pos, "unterminated \\x{...} escape")
			}
			if b == '}' {
				break
			}
			p.advance()
		}
		hex := p.src[start:p.offset]
		p.advance() // '}'
		r, ok := parseHexRune(hex)
		if !ok {
			return nil, 0, false, newBadPattern(pos, "invalid hex escape \\x{%s}", hex)
		}
		return nil, r, false, nil
	}
	start := p.offset
	for i := 0; i < 2 && !p.atEnd(); i++ {
		p.advance()
	}
	hex := p.src[start:p.offset]
	r, ok := parseHexRune(hex)
	if !ok || len(hex) != 2 {
		return nil, 0, false, newBadPattern(pos, "invalid hex escape \\x%s", hex)
	}
	return nil, r, false, nil
}

func parseHexRune(hex string) (rune, bool) {
	if hex == "" {
		return 0, false
	}
	var v rune
	for _, c := range hex {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= c - '0'
		case c >= 'a' && c <= 'f':
			v |= c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v |= c - 'A' + 10
		default:
			return 0, false
		}
	}
	return v, true
}

func wordRanges() []RuneRange {
	return []RuneRange{
		{Lo: '0', Hi: '9'},
		{Lo: 'A', Hi: 'Z'},
		{Lo: 'a', Hi: 'z'},
		{Lo: '_', Hi: '_'},
	}
}

func spaceRanges() []RuneRange {
	return []RuneRange{
		{Lo: '\t', Hi: '\n'},
		{Lo: '\f', Hi: '\r'},
		{Lo: ' ', Hi: ' '},
	}
}

// negateASCII complements a set of ranges within [0x00, 0x7F], matching the
// traditional ASCII-only meaning of \D \W \S (any character outside the
// class, including non-ASCII code points, counts as a match).
func negateASCII(ranges []RuneRange) []RuneRange {
	return append(negateWithin(ranges, 0, 0x7F), RuneRange{Lo: 0x80, Hi: unicode.MaxRune})
}

func negateWithin(ranges []RuneRange, lo, hi rune) []RuneRange {
	sorted := append([]RuneRange(nil), ranges...)
	sortRanges(sorted)
	var out []RuneRange
	cur := lo
	for _, r := range sorted {
		if r.Lo > cur {
			out = append(out, RuneRange{Lo: cur, Hi: r.Lo - 1})
		}
		if r.Hi+1 > cur {
			cur = r.Hi + 1
		}
	}
	if cur <= hi {
		out = append(out, RuneRange{Lo: cur, Hi: hi})
	}
	return out
}

func sortRanges(rs []RuneRange) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j-1].Lo > rs[j].Lo; j-- {
			rs[j-1], rs[j] = rs[j], rs[j-1]
		}
	}
}

// foldRanges expands each range to also include its alternate-case
// codepoints, used when a character class appears under an (?i) scope.
func foldRanges(ranges []RuneRange) []RuneRange {
	out := append([]RuneRange(nil), ranges...)
	for _, r := range ranges {
		if r.Lo == r.Hi {
			lo, up := foldCase(r.Lo)
			if lo != r.Lo {
				out = append(out, RuneRange{Lo: lo, Hi: lo})
			}
			if up != r.Lo {
				out = append(out, RuneRange{Lo: up, Hi: up})
			}
			continue
		}
		// Range folding: fold every codepoint individually is impractical
		// for large ranges, so only ASCII letter ranges are folded; this
		// matches the common case (e.g. [a-z], [A-Z]) exercised in
		// practice by token vocabularies.
		if r.Lo >= 'a' && r.Hi <= 'z' {
			out = append(out, RuneRange{Lo: r.Lo - 'a' + 'A', Hi: r.Hi - 'a' + 'A'})
		} else if r.Lo >= 'A' && r.Hi <= 'Z' {
			out = append(out, RuneRange{Lo: r.Lo - 'A' + 'a', Hi: r.Hi - 'A' + 'a'})
		}
	}
	return out
}

// foldCase returns the lowercase and uppercase forms of r. If r has no case
// variants, both returned values equal r.
func foldCase(r rune) (lo, up rune) {
	return unicode.ToLower(r), unicode.ToUpper(r)
}
