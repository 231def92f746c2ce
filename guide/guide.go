// Package guide implements the runtime query surface a token sampler
// consults at generation time (spec.md section 4.6, "Guide Runtime" / C6):
// given the token just emitted, which state comes next, and which tokens
// are allowed from a state. The guide holds no mutable state and is safe
// for concurrent use by multiple generation streams sharing one Index.
package guide

import (
	"github.com/tokenguide/tokenguide/fsm"
	"github.com/tokenguide/tokenguide/index"
	"github.com/tokenguide/tokenguide/vocab"
)

// Dead is the sentinel state meaning "only end-of-sequence is permitted".
// It is never a valid dom(I) state.
const Dead = -1

// Guide answers generation queries against a built Index: which tokens are
// allowed from the current state, and what state a token transitions to.
type Guide struct {
	idx *index.Index
	dfa *fsm.DFA
	eos vocab.TokenID
}

// New wraps idx (built over dfa) into a Guide, using eos as the token id
// that always forces a transition to Dead.
func New(idx *index.Index, dfa *fsm.DFA, eos vocab.TokenID) *Guide {
	return &Guide{idx: idx, dfa: dfa, eos: eos}
}

// InitialState returns the state generation begins in.
func (g *Guide) InitialState() int {
	return g.dfa.StateID(g.idx.InitialState())
}

// AllowedTokens returns the tokens that may be emitted from state, as a
// dense slice, or nil if state is Dead (only end-of-sequence is allowed).
func (g *Guide) AllowedTokens(state int) []vocab.TokenID {
	if state == Dead {
		return nil
	}
	m, ok := g.idx.AllowedTokens(g.dfa.StateByID(state))
	if !ok {
		return []vocab.TokenID{}
	}
	tokens := make([]vocab.TokenID, 0, len(m))
	for t := range m {
		tokens = append(tokens, t)
	}
	return tokens
}

// NextState returns the state reached from state after emitting token.
func (g *Guide) NextState(state int, token vocab.TokenID) int {
	if state == Dead {
		return Dead
	}
	if token == g.eos {
		return Dead
	}
	next, ok := g.idx.NextState(g.dfa.StateByID(state), token)
	if !ok {
		return Dead
	}
	return g.dfa.StateID(next)
}

// IsFinal reports whether state accepts: Dead always does (end-of-sequence
// is always a valid place to stop), and any DFA state already in D's
// finals does too.
func (g *Guide) IsFinal(state int) bool {
	if state == Dead {
		return true
	}
	return g.dfa.Final(g.dfa.StateByID(state))
}

// Transitions iterates every (state, token, nextState) triple the index
// holds, for inspection/serialization.
func (g *Guide) Transitions(yield func(state int, token vocab.TokenID, next int) bool) {
	for s, m := range g.idx.Transitions() {
		sid := g.dfa.StateID(s)
		for t, next := range m {
			if !yield(sid, t, g.dfa.StateID(next)) {
				return
			}
		}
	}
}
