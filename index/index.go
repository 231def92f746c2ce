// Package index builds and stores the per-state token transition table
// (spec.md section 4.5, "Index Builder" / C5): for every reachable DFA
// state, which vocabulary token ids may be emitted from it, and which
// state each leads to.
package index

import (
	"errors"
	"iter"

	"github.com/tokenguide/tokenguide/fsm"
	"github.com/tokenguide/tokenguide/vocab"
)

// UnsatisfiableVocabulary is returned when no vocabulary string walks the
// DFA all the way to an accepting state: the index would never let
// generation terminate.
var UnsatisfiableVocabulary = errors.New("index: vocabulary admits no accepting trajectory")

// Index is the immutable result of Build: I[state][token] = next state,
// for every state with at least one outgoing token.
type Index struct {
	transitions map[fsm.State]map[vocab.TokenID]fsm.State
	initial     fsm.State
}

// InitialState returns the DFA's start state.
func (ix *Index) InitialState() fsm.State {
	return ix.initial
}

// AllowedTokens returns state's outgoing token map and whether state has
// any entry in the index at all.
func (ix *Index) AllowedTokens(state fsm.State) (map[vocab.TokenID]fsm.State, bool) {
	m, ok := ix.transitions[state]
	return m, ok
}

// NextState returns the state reached from state by emitting token, and
// whether that transition exists.
func (ix *Index) NextState(state fsm.State, token vocab.TokenID) (fsm.State, bool) {
	m, ok := ix.transitions[state]
	if !ok {
		return fsm.DeadState, false
	}
	next, ok := m[token]
	return next, ok
}

// Len returns the number of states with at least one outgoing entry.
func (ix *Index) Len() int {
	return len(ix.transitions)
}

// States iterates every state with at least one outgoing entry.
func (ix *Index) States() iter.Seq[fsm.State] {
	return func(yield func(fsm.State) bool) {
		for s := range ix.transitions {
			if !yield(s) {
				return
			}
		}
	}
}

// Transitions iterates every (state, token) -> nextState entry in the
// index, in no particular order.
func (ix *Index) Transitions() iter.Seq2[fsm.State, map[vocab.TokenID]fsm.State] {
	return func(yield func(fsm.State, map[vocab.TokenID]fsm.State) bool) {
		for s, m := range ix.transitions {
			if !yield(s, m) {
				return
			}
		}
	}
}
