package regex

import (
	"sort"

	"github.com/tokenguide/tokenguide/internal/interval"
)

// CharFSM is a deterministic finite automaton over code points, built from
// an NFA by subset construction (spec.md section 3: "Regex Parser" output
// consumed by the byte-level expander). The rune space is partitioned into
// a dense alphabet of equivalence classes first, so that transition tables
// stay small regardless of how wide the pattern's character classes are.
type CharFSM struct {
	// Alphabet partitions the rune space into disjoint ranges; all runes
	// in Alphabet[i] behave identically with respect to every state's
	// transitions.
	Alphabet []RuneRange
	States   []CharState
	Start    int
}

// CharState is one DFA state: a dense transition table indexed by alphabet
// class, plus whether the state accepts.
type CharState struct {
	Next  []int // Next[class] == -1 means no transition.
	Final bool
}

// NoTransition marks the absence of a transition for a given class in
// CharState.Next.
const NoTransition = -1

// ClassOf returns the alphabet class containing rune r, or NoTransition if
// none covers it (which cannot happen for a well-formed Alphabet, since
// buildAlphabet always covers [0, maxRune]).
func (c *CharFSM) ClassOf(r rune) int {
	for i, rng := range c.Alphabet {
		if rng.Lo <= r && r <= rng.Hi {
			return i
		}
	}
	return NoTransition
}

// Next returns the state reached from state on rune r, or NoTransition if
// there is none.
func (c *CharFSM) Next(state int, r rune) int {
	class := c.ClassOf(r)
	if class == NoTransition {
		return NoTransition
	}
	return c.States[state].Next[class]
}

// Determinize builds the character-level DFA for an NFA via subset
// construction over an alphabet of equivalence classes derived from the
// NFA's edge ranges.
func Determinize(n *NFA) *CharFSM {
	alphabet := buildAlphabet(n)

	type stateSet struct {
		key    string
		states []int
	}
	closureCache := map[int][]int{}
	closure := func(states []int) []int {
		seen := map[int]bool{}
		var stack []int
		for _, s := range states {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range cachedEps(n, closureCache, s) {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
		out := make([]int, 0, len(seen))
		for s := range seen {
			out = append(out, s)
		}
		sort.Ints(out)
		return out
	}

	start := closure([]int{n.Start})

	fsm := &CharFSM{Alphabet: alphabet}
	indexOf := map[string]int{}
	var queue []stateSet

	addState := func(states []int) int {
		key := setKey(states)
		if id, ok := indexOf[key]; ok {
			return id
		}
		id := len(fsm.States)
		indexOf[key] = id
		final := containsState(states, n.Final)
		fsm.States = append(fsm.States, CharState{
			Next:  newTransitionTable(len(alphabet)),
			Final: final,
		})
		queue = append(queue, stateSet{key: key, states: states})
		return id
	}

	fsm.Start = addState(start)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		id := indexOf[cur.key]

		for class, rng := range alphabet {
			rep := rng.Lo
			var targets []int
			for _, s := range cur.states {
				for _, edge := range n.States[s].Edges {
					if edge.Range.Lo <= rep && rep <= edge.Range.Hi {
						targets = append(targets, edge.Target)
					}
				}
			}
			if len(targets) == 0 {
				continue
			}
			next := closure(targets)
			fsm.States[id].Next[class] = addState(next)
		}
	}

	return fsm
}

func newTransitionTable(n int) []int {
	t := make([]int, n)
	for i := range t {
		t[i] = NoTransition
	}
	return t
}

func cachedEps(n *NFA, cache map[int][]int, s int) []int {
	if eps, ok := cache[s]; ok {
		return eps
	}
	eps := n.States[s].Eps
	cache[s] = eps
	return eps
}

func containsState(states []int, target int) bool {
	for _, s := range states {
		if s == target {
			return true
		}
	}
	return false
}

func setKey(states []int) string {
	// states is always kept sorted by the caller.
	b := make([]byte, 0, len(states)*5)
	for i, s := range states {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendInt(b, s)
	}
	return string(b)
}

func appendInt(b []byte, v int) []byte {
	if v == 0 {
		return append(b, '0')
	}
	start := len(b)
	for v > 0 {
		b = append(b, byte('0'+v%10))
		v /= 10
	}
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// buildAlphabet partitions [0, maxRune] into the coarsest set of ranges
// such that every NFA edge's Range is a union of whole partition ranges.
// Each maximal run of runes not covered by any edge becomes a class of its
// own; no transition ever fires on those "anything else" classes.
func buildAlphabet(n *NFA) []RuneRange {
	var ix interval.Intersect[rune, int]
	id := 0
	for _, st := range n.States {
		for _, e := range st.Edges {
			ix.Insert(e.Range.Lo, e.Range.Hi, id)
			id++
		}
	}

	var ranges []RuneRange
	for entry := range ix.Entries() {
		if len(ranges) > 0 && ranges[len(ranges)-1].Hi+1 < entry.Start {
			ranges = append(ranges, RuneRange{Lo: ranges[len(ranges)-1].Hi + 1, Hi: entry.Start - 1})
		} else if len(ranges) == 0 && entry.Start > 0 {
			ranges = append(ranges, RuneRange{Lo: 0, Hi: entry.Start - 1})
		}
		ranges = append(ranges, RuneRange{Lo: entry.Start, Hi: entry.End})
	}
	if len(ranges) == 0 {
		return []RuneRange{{Lo: 0, Hi: maxRune}}
	}
	if last := ranges[len(ranges)-1]; last.Hi < maxRune {
		ranges = append(ranges, RuneRange{Lo: last.Hi + 1, Hi: maxRune})
	}
	return ranges
}
