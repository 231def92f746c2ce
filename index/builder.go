package index

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/tokenguide/tokenguide/fsm"
	"github.com/tokenguide/tokenguide/regex"
	"github.com/tokenguide/tokenguide/vocab"
)

// FrozenTokens lets a caller mark a set of vocabulary strings to be walked
// against the original rune-level FSM in addition to the byte-level DFA
// (spec.md section 4.4's `frozen_tokens`): each entry's raw text is matched
// as a single unit against the CharFSM the DFA was canonicalized from,
// using OldToNew to translate the resulting CharFSM state id back into a
// DFA State. The ordinary byte walk still runs for the same ids; where
// both succeed, the frozen walk's result is the one recorded. This is how
// frozen-token passthrough is implemented here, at the index builder
// instead of inside the FSM types themselves (see DESIGN.md).
type FrozenTokens struct {
	Source   *regex.CharFSM
	OldToNew map[int]fsm.State
	Tokens   map[string][]vocab.TokenID
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	maxParallelism int64
	frozen         *FrozenTokens
}

// WithMaxParallelism bounds how many states are scanned concurrently.
// The default is 1 (sequential).
func WithMaxParallelism(n int64) Option {
	return func(o *buildOptions) { o.maxParallelism = n }
}

// WithFrozenTokens wires frozen-token passthrough into Build.
func WithFrozenTokens(f FrozenTokens) Option {
	return func(o *buildOptions) { o.frozen = &f }
}

type vocabEntry struct {
	bytes []byte
	ids   []vocab.TokenID
}

type frozenEntry struct {
	runes []rune
	ids   []vocab.TokenID
}

// Build walks every vocabulary string through dfa, starting from the
// initial state and growing the frontier by the states those walks
// actually reach (spec.md section 4.5). It returns UnsatisfiableVocabulary
// if no walk ever reaches an accepting state.
func Build(ctx context.Context, dfa *fsm.DFA, vocabulary *vocab.Vocabulary, opts ...Option) (*Index, error) {
	options := buildOptions{maxParallelism: 1}
	for _, opt := range opts {
		opt(&options)
	}

	entries, err := vocabEntries(vocabulary)
	if err != nil {
		return nil, err
	}

	var frozenEntries []frozenEntry
	var newToOldChar map[fsm.State]int
	if options.frozen != nil {
		frozenEntries = frozenEntriesFrom(options.frozen.Tokens)
		newToOldChar = make(map[fsm.State]int, len(options.frozen.OldToNew))
		for old, s := range options.frozen.OldToNew {
			newToOldChar[s] = old
		}
	}
	frozen := options.frozen

	transitions := map[fsm.State]map[vocab.TokenID]fsm.State{}
	visited := map[fsm.State]bool{dfa.Start: true}
	frontier := []fsm.State{dfa.Start}
	foundAccepting := false

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sort.Slice(frontier, func(i, j int) bool {
			return dfa.StateID(frontier[i]) < dfa.StateID(frontier[j])
		})

		results := make([]stateResult, len(frontier))
		g, gctx := errgroup.WithContext(ctx)
		sem := semaphore.NewWeighted(options.maxParallelism)
		for i, q := range frontier {
			i, q := i, q
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
				results[i] = scanState(dfa, entries, frozen, frozenEntries, newToOldChar, q)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []fsm.State
		for _, res := range results {
			if len(res.transitions) == 0 {
				continue
			}
			transitions[res.state] = res.transitions
			for _, s := range res.discovered {
				if dfa.Final(s) {
					foundAccepting = true
				}
				if !visited[s] {
					visited[s] = true
					next = append(next, s)
				}
			}
		}
		frontier = next
	}

	if !foundAccepting {
		return nil, UnsatisfiableVocabulary
	}

	return &Index{transitions: transitions, initial: dfa.Start}, nil
}

type stateResult struct {
	state       fsm.State
	transitions map[vocab.TokenID]fsm.State
	discovered  []fsm.State
}

func scanState(dfa *fsm.DFA, entries []vocabEntry, frozen *FrozenTokens, frozenEntries []frozenEntry, newToOldChar map[fsm.State]int, q fsm.State) stateResult {
	local := map[vocab.TokenID]fsm.State{}
	discoveredSet := map[fsm.State]bool{}

	for _, e := range entries {
		end, ok := walkBytes(dfa, q, e.bytes)
		if !ok {
			continue
		}
		for _, id := range e.ids {
			local[id] = end
		}
		discoveredSet[end] = true
	}

	if frozen != nil {
		if oldID, ok := newToOldChar[q]; ok {
			for _, fe := range frozenEntries {
				endOld, ok := walkRunes(frozen.Source, oldID, fe.runes)
				if !ok {
					continue
				}
				endState, ok := frozen.OldToNew[endOld]
				if !ok {
					continue
				}
				for _, id := range fe.ids {
					local[id] = endState
				}
				discoveredSet[endState] = true
			}
		}
	}

	discovered := make([]fsm.State, 0, len(discoveredSet))
	for s := range discoveredSet {
		discovered = append(discovered, s)
	}
	return stateResult{state: q, transitions: local, discovered: discovered}
}

func walkBytes(dfa *fsm.DFA, start fsm.State, bytes []byte) (fsm.State, bool) {
	cur := start
	for _, b := range bytes {
		class := dfa.ClassOf(b)
		if class < 0 {
			return fsm.DeadState, false
		}
		next := dfa.Next(cur, class)
		if next == fsm.DeadState {
			return fsm.DeadState, false
		}
		cur = next
	}
	return cur, true
}

func walkRunes(c *regex.CharFSM, start int, runes []rune) (int, bool) {
	cur := start
	for _, r := range runes {
		next := c.Next(cur, r)
		if next == regex.NoTransition {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

func vocabEntries(v *vocab.Vocabulary) ([]vocabEntry, error) {
	entries := make([]vocabEntry, 0, v.Len())
	for s, ids := range v.Strings() {
		bs, err := fsm.DecodeByteEscape(s)
		if err != nil {
			return nil, fmt.Errorf("index: vocabulary string %q: %w", s, err)
		}
		entries = append(entries, vocabEntry{bytes: bs, ids: ids})
	}
	return entries, nil
}

// frozenEntriesFrom precomputes a FrozenTokens set's rune decomposition
// once per Build call, in sorted order for determinism.
func frozenEntriesFrom(tokens map[string][]vocab.TokenID) []frozenEntry {
	keys := make([]string, 0, len(tokens))
	for s := range tokens {
		keys = append(keys, s)
	}
	sort.Strings(keys)

	entries := make([]frozenEntry, 0, len(keys))
	for _, s := range keys {
		entries = append(entries, frozenEntry{runes: []rune(s), ids: tokens[s]})
	}
	return entries
}
