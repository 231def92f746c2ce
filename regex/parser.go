package regex

import (
	"strconv"
	"unicode/utf8"

	"github.com/tokenguide/tokenguide/reporter"
)

// Parse parses pattern into a regex AST, per spec.md section 4.1: standard
// regex syntax (literals, classes with ranges/negation, `.`, `|`, `()`,
// `(?:)`, `?`, `*`, `+`, `{m}`, `{m,}`, `{m,n}`), flags and anchors parsed
// but mostly inert, and lookaround/backreferences rejected outright.
func Parse(pattern string) (Node, error) {
	p := &parser{src: pattern}
	node, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, newBadPattern(p.pos(), "unexpected %q", p.peekRune())
	}
	return node, nil
}

type parser struct {
	src    string
	offset int // byte offset into src
	column int // rune index into src
}

func (p *parser) atEnd() bool {
	return p.offset >= len(p.src)
}

func (p *parser) pos() reporter.Position {
	return reporter.Position{Offset: p.offset, Column: p.column}
}

// peekRune returns the next rune without consuming it, or utf8.RuneError
// (with size 0) at end of input.
func (p *parser) peekRune() rune {
	if p.atEnd() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.offset:])
	return r
}

func (p *parser) peekByte() (byte, bool) {
	if p.atEnd() {
		return 0, false
	}
	return p.src[p.offset], true
}

func (p *parser) advance() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.offset:])
	p.offset += size
	p.column++
	return r
}

func (p *parser) consumeByte(b byte) bool {
	if c, ok := p.peekByte(); ok && c == b {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectByte(b byte) error {
	if !p.consumeByte(b) {
		return newBadPattern(p.pos(), "expected %q", rune(b))
	}
	return nil
}

// parseAlt parses `concat ('|' concat)*`.
func (p *parser) parseAlt() (Node, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	children := []Node{first}
	for p.consumeByte('|') {
		next, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &Alt{Children: children}, nil
}

// parseConcat parses a sequence of repeated atoms, stopping at `|`, `)`, or
// end of input. Standalone `(?flags)` directives affect the case-folding of
// subsequent siblings in this same Concat.
func (p *parser) parseConcat() (Node, error) {
	var children []Node
	flags := Flags{}
	for {
		if p.atEnd() {
			break
		}
		if b, _ := p.peekByte(); b == '|' || b == ')' {
			break
		}
		if fs, ok, err := p.tryParseFlagSet(); err != nil {
			return nil, err
		} else if ok {
			flags = fs.Flags
			continue
		}
		child, err := p.parseRepeat(flags)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 0 {
		return &Concat{}, nil
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &Concat{Children: children}, nil
}

// tryParseFlagSet consumes a standalone `(?flags)` directive (not followed
// by `:`), if one starts here.
func (p *parser) tryParseFlagSet() (*FlagSet, bool, error) {
	if !startsWith(p.src[p.offset:], "(?") {
		return nil, false, nil
	}
	// Peek past "(?" for a flag letter run followed by ')'.
	save := *p
	p.advance() // '('
	p.advance() // '?'
	flags, ok := p.tryConsumeFlagLetters()
	if !ok || !p.consumeByte(')') {
		*p = save
		return nil, false, nil
	}
	return &FlagSet{Flags: flags}, true, nil
}

func (p *parser) tryConsumeFlagLetters() (Flags, bool) {
	var flags Flags
	consumed := false
	for {
		b, ok := p.peekByte()
		if !ok {
			break
		}
		switch b {
		case 'i':
			flags.CaseInsensitive = true
		case 's':
			flags.DotAll = true
		case 'm':
			flags.Multiline = true
		default:
			return flags, consumed
		}
		p.advance()
		consumed = true
	}
	return flags, consumed
}

func startsWith(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// parseRepeat parses `atom ('*' | '+' | '?' | '{m}' | '{m,}' | '{m,n}')*`.
func (p *parser) parseRepeat(flags Flags) (Node, error) {
	atom, err := p.parseAtom(flags)
	if err != nil {
		return nil, err
	}
	for {
		b, ok := p.peekByte()
		if !ok {
			return atom, nil
		}
		switch b {
		case '*':
			p.advance()
			atom = &Repeat{Child: atom, Min: 0, Max: Unbounded}
		case '+':
			p.advance()
			atom = &Repeat{Child: atom, Min: 1, Max: Unbounded}
		case '?':
			p.advance()
			atom = &Repeat{Child: atom, Min: 0, Max: 1}
		case '{':
			rep, matched, err := p.tryParseBounds(atom)
			if err != nil {
				return nil, err
			}
			if !matched {
				return atom, nil
			}
			atom = rep
		default:
			return atom, nil
		}
	}
}

// tryParseBounds parses `{m}`, `{m,}`, or `{m,n}` at the current position.
// If the braces don't parse as a bound expression, the position is restored
// and matched is false, so that a literal `{` can fall through to parseAtom.
func (p *parser) tryParseBounds(child Node) (Node, bool, error) {
	save := *p
	p.advance() // '{'

	minStr := p.consumeDigits()
	if minStr == "" {
		*p = save
		return nil, false, nil
	}
	minN, err := strconv.Atoi(minStr)
	if err != nil {
		*p = save
		return nil, false, nil
	}

	maxN := minN
	if p.consumeByte(',') {
		maxStr := p.consumeDigits()
		if maxStr == "" {
			maxN = Unbounded
		} else {
			maxN, err = strconv.Atoi(maxStr)
			if err != nil {
				*p = save
				return nil, false, nil
			}
		}
	}

	if !p.consumeByte('}') {
		*p = save
		return nil, false, nil
	}
	if maxN != Unbounded && maxN < minN {
		return nil, true, newBadPattern(p.pos(), "invalid repetition bounds {%d,%d}", minN, maxN)
	}
	return &Repeat{Child: child, Min: minN, Max: maxN}, true, nil
}

func (p *parser) consumeDigits() string {
	start := p.offset
	for {
		b, ok := p.peekByte()
		if !ok || b < '0' || b > '9' {
			break
		}
		p.advance()
	}
	return p.src[start:p.offset]
}

func (p *parser) parseAtom(flags Flags) (Node, error) {
	pos := p.pos()
	if p.atEnd() {
		return nil, newBadPattern(pos, "unexpected end of pattern")
	}
	b, _ := p.peekByte()
	switch b {
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass(flags)
	case '.':
		p.advance()
		return &AnyChar{}, nil
	case '^':
		p.advance()
		return &Anchor{Start: true}, nil
	case '$':
		p.advance()
		return &Anchor{Start: false}, nil
	case '\\':
		return p.parseEscape(flags)
	case '*', '+', '?':
		return nil, newBadPattern(pos, "repetition operator %q with nothing to repeat", rune(b))
	case ')', '|':
		return nil, newBadPattern(pos, "unexpected %q", rune(b))
	default:
		r := p.advance()
		return literalNode(r, flags), nil
	}
}

func literalNode(r rune, flags Flags) Node {
	if !flags.CaseInsensitive {
		return &Literal{Rune: r}
	}
	lo, up := foldCase(r)
	if lo == up {
		return &Literal{Rune: r}
	}
	return &Class{Ranges: []RuneRange{{Lo: lo, Hi: lo}, {Lo: up, Hi: up}}}
}

// parseGroup parses `(...)`, `(?:...)`, `(?P<name>...)`, `(?flags:...)`,
// and rejects lookaround groups as UnsupportedPattern.
func (p *parser) parseGroup() (Node, error) {
	pos := p.pos()
	p.advance() // '('

	if p.consumeByte('?') {
		switch {
		case p.consumeByte(':'):
			child, err := p.parseAlt()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(')'); err != nil {
				return nil, err
			}
			return &Group{Child: child, Capturing: false}, nil

		case startsWith(p.src[p.offset:], "P<"):
			p.offset += 2
			p.column += 2
			name := p.consumeUntilByte('>')
			if err := p.expectByte('>'); err != nil {
				return nil, err
			}
			child, err := p.parseAlt()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(')'); err != nil {
				return nil, err
			}
			return &Group{Child: child, Capturing: true, Name: name}, nil

		case startsWithAny(p.src[p.offset:], "=", "!", "<="+"", "<!"):
			return nil, newUnsupportedPattern(pos, "lookaround is not a regular-language construct")

		default:
			flags, ok := p.tryConsumeFlagLetters()
			if !ok {
				return nil, newBadPattern(pos, "unrecognized group syntax")
			}
			if !p.consumeByte(':') {
				return nil, newBadPattern(pos, "expected ':' after inline flags in group")
			}
			child, err := p.parseAlt()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(')'); err != nil {
				return nil, err
			}
			return &FlagGroup{Flags: flags, Child: child}, nil
		}
	}

	child, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	return &Group{Child: child, Capturing: true}, nil
}

func startsWithAny(s string, prefixes ...string) bool {
	for _, pre := range prefixes {
		if startsWith(s, pre) {
			return true
		}
	}
	return false
}

func (p *parser) consumeUntilByte(b byte) string {
	start := p.offset
	for {
		c, ok := p.peekByte()
		if !ok || c == b {
			break
		}
		p.advance()
	}
	return p.src[start:p.offset]
}
