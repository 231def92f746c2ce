package fsm

import (
	"github.com/tokenguide/tokenguide/internal/interval"
	"github.com/tokenguide/tokenguide/internal/trie"
	"github.com/tokenguide/tokenguide/regex"
)

// ByteFSM is a deterministic finite automaton over raw bytes (0-255),
// expanded from a regex.CharFSM by encoding every rune-range transition as
// a chain of UTF-8 byte transitions (spec.md section 4.2). Multi-byte
// chains that share an identical continuation are hash-consed down to one
// shared intermediate state, so a wide character class doesn't blow up the
// state count.
type ByteFSM struct {
	Alphabet []ByteRange
	States   []ByteState
	Start    int

	// source is retained only when ExpandOptions.KeepUTF8 is set, for
	// tests that walk both representations in lockstep to check parity.
	source *regex.CharFSM
}

// ByteState is one byte-DFA state: a dense transition table indexed by
// alphabet class, plus whether the state accepts. States expanded directly
// from a regex.CharFSM state carry Final from that state; intermediate
// continuation states created mid-chain are never final.
type ByteState struct {
	Next  []int
	Final bool
}

// NoTransition marks the absence of a transition for a given class.
const NoTransition = -1

// ExpandOptions configures Expand.
type ExpandOptions struct {
	// KeepUTF8 retains the source CharFSM on the returned ByteFSM, for
	// parity testing between the rune-level and byte-level walks.
	KeepUTF8 bool
}

// Expand converts a character-level DFA into a byte-level one, per spec.md
// section 4.2.
func Expand(c *regex.CharFSM, opts ExpandOptions) *ByteFSM {
	type edge struct {
		state, target int
		seqs          []byteSeq
	}

	var allRanges []ByteRange
	var edges []edge
	for s, st := range c.States {
		for class, target := range st.Next {
			if target == regex.NoTransition {
				continue
			}
			rng := c.Alphabet[class]
			seqs := utf8Sequences(rng.Lo, rng.Hi)
			for _, seq := range seqs {
				allRanges = append(allRanges, seq...)
			}
			edges = append(edges, edge{state: s, target: target, seqs: seqs})
		}
	}

	alphabet := buildByteAlphabet(allRanges)

	fsm := &ByteFSM{Alphabet: alphabet, Start: c.Start}
	if opts.KeepUTF8 {
		fsm.source = c
	}
	fsm.States = make([]ByteState, len(c.States))
	for i, st := range c.States {
		fsm.States[i] = ByteState{Next: newByteTransitionTable(len(alphabet)), Final: st.Final}
	}

	cache := &trie.Cache{}

	// Per origin macro-state, merge every outgoing chain into one nested
	// trie keyed by alphabet class, then materialize it bottom-up so that
	// identical continuations collapse to the same state.
	perState := make(map[int]trieNode, len(c.States))
	for _, e := range edges {
		node := perState[e.state]
		if node == nil {
			node = trieNode{}
			perState[e.state] = node
		}
		for _, seq := range e.seqs {
			classSeq := classChainFor(alphabet, seq)
			addChainsToTrie(node, classSeq, 0, e.target)
		}
	}

	for state, node := range perState {
		for class, v := range node {
			target := materialize(&fsm.States, cache, len(alphabet), v)
			fsm.States[state].Next[class] = target
		}
	}

	return fsm
}

// trieNode maps an alphabet class to either a nested trieNode (more bytes
// to consume) or a leaf int (the final macro-state reached once this byte
// is consumed).
type trieNode map[int]interface{}

// classChainFor expands a byteSeq into, for each position, the list of
// alphabet classes whose union equals that position's ByteRange.
func classChainFor(alphabet []ByteRange, seq byteSeq) [][]int {
	chain := make([][]int, len(seq))
	for i, r := range seq {
		chain[i] = classesInRange(alphabet, r.Lo, r.Hi)
	}
	return chain
}

// addChainsToTrie inserts every combination of (class at position i) x
// (class at position i+1) x ... into node, terminating in leaf at the last
// position.
func addChainsToTrie(node trieNode, chain [][]int, pos int, leaf int) {
	if pos == len(chain)-1 {
		for _, class := range chain[pos] {
			node[class] = leaf
		}
		return
	}
	for _, class := range chain[pos] {
		next, ok := node[class].(trieNode)
		if !ok {
			next = trieNode{}
			node[class] = next
		}
		addChainsToTrie(next, chain, pos+1, leaf)
	}
}

// materialize converts a trie value (leaf or nested node) into a concrete
// ByteFSM state id, hash-consing nested nodes through cache.
func materialize(states *[]ByteState, cache *trie.Cache, numClasses int, v interface{}) int {
	if leaf, ok := v.(int); ok {
		return leaf
	}
	node := v.(trieNode)
	edges := make([]trie.Edge, 0, len(node))
	for class, child := range node {
		edges = append(edges, trie.Edge{Key: class, Target: materialize(states, cache, numClasses, child)})
	}
	return cache.Intern(edges, func() int {
		id := len(*states)
		next := newByteTransitionTable(numClasses)
		for _, e := range edges {
			next[e.Key] = e.Target
		}
		*states = append(*states, ByteState{Next: next})
		return id
	})
}

func newByteTransitionTable(n int) []int {
	t := make([]int, n)
	for i := range t {
		t[i] = NoTransition
	}
	return t
}

func classesInRange(alphabet []ByteRange, lo, hi byte) []int {
	var out []int
	for i, r := range alphabet {
		if r.Lo > hi {
			break
		}
		if r.Hi < lo {
			continue
		}
		out = append(out, i)
	}
	return out
}

// buildByteAlphabet partitions [0, 255] into the coarsest set of ranges
// such that every ByteRange in ranges is a union of whole partition
// entries, mirroring regex.Determinize's alphabet construction but over
// the byte domain.
func buildByteAlphabet(ranges []ByteRange) []ByteRange {
	var ix interval.Intersect[int, int]
	id := 0
	for _, r := range ranges {
		ix.Insert(int(r.Lo), int(r.Hi), id)
		id++
	}

	var out []ByteRange
	for entry := range ix.Entries() {
		if len(out) > 0 && int(out[len(out)-1].Hi)+1 < entry.Start {
			out = append(out, ByteRange{Lo: out[len(out)-1].Hi + 1, Hi: byte(entry.Start - 1)})
		} else if len(out) == 0 && entry.Start > 0 {
			out = append(out, ByteRange{Lo: 0, Hi: byte(entry.Start - 1)})
		}
		out = append(out, ByteRange{Lo: byte(entry.Start), Hi: byte(entry.End)})
	}
	if len(out) == 0 {
		return []ByteRange{{Lo: 0, Hi: 255}}
	}
	if last := out[len(out)-1]; last.Hi < 255 {
		out = append(out, ByteRange{Lo: last.Hi + 1, Hi: 255})
	}
	return out
}
