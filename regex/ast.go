// Package regex parses a regular expression into a pattern AST (C1) and
// compiles that AST into a character-level finite-state machine.
package regex

// Node is a pattern AST node as described in spec.md section 3: a tagged
// variant tree of literal character sets, character groups, repetitions,
// concatenations, alternations, and groups.
type Node interface {
	isNode()
}

// RuneRange is an inclusive range of code points.
type RuneRange struct {
	Lo, Hi rune
}

// Literal is a single character, optionally negated (matches any character
// other than Rune).
type Literal struct {
	Rune    rune
	Negated bool
}

func (*Literal) isNode() {}

// Class is a character class: a set of code point ranges, optionally
// negated.
type Class struct {
	Ranges  []RuneRange
	Negated bool
}

func (*Class) isNode() {}

// AnyChar is `.`: matches any single character.
type AnyChar struct{}

func (*AnyChar) isNode() {}

// Repeat is a bounded or unbounded repetition of Child. Max == Unbounded
// means no upper bound (as produced by `*`, `+`, and `{m,}`).
type Repeat struct {
	Child Node
	Min   int
	Max   int
}

// Unbounded is the sentinel Repeat.Max value meaning "no upper bound".
const Unbounded = -1

func (*Repeat) isNode() {}

// Concat is an ordered sequence of nodes, matched one after another.
type Concat struct {
	Children []Node
}

func (*Concat) isNode() {}

// Alt is an ordered sequence of alternatives; any one may match.
type Alt struct {
	Children []Node
}

func (*Alt) isNode() {}

// Group wraps a child node. Capturing groups and non-capturing groups both
// parse to this node; Name is set for a capturing group that also has a
// name (`(?P<name>...)`), and is empty otherwise. Grouping carries no
// semantic weight beyond precedence: it is transparent to NFA construction.
type Group struct {
	Child     Node
	Capturing bool
	Name      string
}

func (*Group) isNode() {}

// Anchor is `^` or `$`. Per spec.md section 4.1, anchors are recognized
// syntactically but are inert wrappers: they are carried in the AST and
// then treated as a zero-width no-op during NFA construction, since this
// system's language is the regex's full set of strings, not an assertion
// about where a match may start or end within a larger buffer.
type Anchor struct {
	Start bool // true for `^`, false for `$`
}

func (*Anchor) isNode() {}

// Flags are the inline flag letters recognized by `(?flags)` and
// `(?flags:...)`. Per spec.md section 4.1, flags are parsed but mostly
// carried as inert wrappers; CaseInsensitive is the one exception this
// port honors (see SPEC_FULL.md's supplemental features), folding case at
// parse time instead of at match time: a standalone `(?i)` folds the
// literals, escapes and classes that follow it directly in the same
// sequence. Atoms inside a group, including a scoped `(?i:...)` group, are
// not folded.
type Flags struct {
	CaseInsensitive bool
	DotAll          bool
	Multiline       bool
}

// FlagSet is a standalone `(?flags)` with no scope of its own: it changes
// Flags for the remainder of the enclosing Concat, à la Go's regexp/syntax.
type FlagSet struct {
	Flags Flags
}

func (*FlagSet) isNode() {}

// FlagGroup is a scoped `(?flags:...)`.
type FlagGroup struct {
	Flags Flags
	Child Node
}

func (*FlagGroup) isNode() {}
