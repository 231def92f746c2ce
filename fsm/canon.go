package fsm

import (
	"sort"

	"github.com/tokenguide/tokenguide/internal/arena"
)

// DFA is the canonical byte-level DFA produced by Canonicalize (spec.md
// section 4.3): states are renumbered by a deterministic traversal that
// assigns ids to each state's successors, visited in ascending
// alphabet-class order, the moment they are first discovered. States are
// packed into an arena.Arena for compact, stable storage.
type DFA struct {
	Alphabet []ByteRange

	states    arena.Arena[dfaState]
	Start     State
	numStates int
}

// State is an opaque handle to one DFA state. The zero State is DeadState:
// it is never returned by Canonicalize for a reachable state, so it
// doubles as the "no transition" sentinel.
type State = arena.Pointer[dfaState]

// DeadState is the sentinel meaning "no transition" / "not a live state".
var DeadState State

type dfaState struct {
	next  []State
	final bool
}

// Next returns the state reached from s on the given alphabet class, or
// DeadState if s has no such transition.
func (d *DFA) Next(s State, class int) State {
	return d.states.At(arena.Untyped(s)).next[class]
}

// Final reports whether s is an accepting state.
func (d *DFA) Final(s State) bool {
	return d.states.At(arena.Untyped(s)).final
}

// ClassOf returns the alphabet class containing byte b.
func (d *DFA) ClassOf(b byte) int {
	for i, r := range d.Alphabet {
		if r.Lo <= b && b <= r.Hi {
			return i
		}
	}
	return -1
}

// NumStates returns the number of live states in d.
func (d *DFA) NumStates() int {
	return d.numStates
}

// NumClasses returns the number of distinct alphabet classes d's
// transitions are indexed by.
func (d *DFA) NumClasses() int {
	return len(d.Alphabet)
}

// StateID returns s's dense, zero-based canonical id, suitable for use as
// a slice index. StateID(d.Start) is always 0.
func (d *DFA) StateID(s State) int {
	return int(arena.Untyped(s)) - 1
}

// StateByID is the inverse of StateID.
func (d *DFA) StateByID(id int) State {
	return State(arena.Untyped(id + 1))
}

// Canonicalize renumbers a ByteFSM's reachable states into a DFA, and
// returns a map from the ByteFSM's original state indices to the new
// State handles (used by callers, like the index builder, that still hold
// references expressed in the original numbering).
func Canonicalize(b *ByteFSM) (*DFA, map[int]State) {
	oldToNewID := map[int]int{b.Start: 0}
	nextID := 0
	seen := map[int]bool{b.Start: true}
	stack := []int{b.Start}

	for len(stack) > 0 {
		old := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, class := range sortedClassesWithTransition(b.States[old].Next) {
			target := b.States[old].Next[class]
			if !seen[target] {
				stack = append(stack, target)
				seen[target] = true
			}
			if _, ok := oldToNewID[target]; !ok {
				nextID++
				oldToNewID[target] = nextID
			}
		}
	}

	numStates := len(oldToNewID)
	newToOld := make([]int, numStates)
	for old, id := range oldToNewID {
		newToOld[id] = old
	}

	dfa := &DFA{Alphabet: b.Alphabet, numStates: numStates}
	handles := make([]State, numStates)
	for i := 0; i < numStates; i++ {
		handles[i] = dfa.states.New(dfaState{})
	}
	for id, old := range newToOld {
		st := b.States[old]
		next := make([]State, len(st.Next))
		for class, target := range st.Next {
			if target == NoTransition {
				next[class] = DeadState
			} else {
				next[class] = handles[oldToNewID[target]]
			}
		}
		*dfa.states.At(arena.Untyped(handles[id])) = dfaState{next: next, final: st.Final}
	}
	dfa.Start = handles[0]

	oldToNew := make(map[int]State, numStates)
	for old, id := range oldToNewID {
		oldToNew[old] = handles[id]
	}
	return dfa, oldToNew
}

func sortedClassesWithTransition(next []int) []int {
	var out []int
	for class, target := range next {
		if target != NoTransition {
			out = append(out, class)
		}
	}
	sort.Ints(out)
	return out
}
