package vocab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenguide/tokenguide/vocab"
)

func TestFromMapGroupsCollidingStrings(t *testing.T) {
	t.Parallel()

	v, err := vocab.FromMap(map[string][]vocab.TokenID{
		"cat": {1, 2},
		"dog": {3},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, v.Len())

	got := map[string][]vocab.TokenID{}
	for s, ids := range v.Strings() {
		got[s] = ids
	}
	assert.Equal(t, []vocab.TokenID{1, 2}, got["cat"])
	assert.Equal(t, []vocab.TokenID{3}, got["dog"])
}

func TestFromMapRejectsDuplicateTokenID(t *testing.T) {
	t.Parallel()

	_, err := vocab.FromMap(map[string][]vocab.TokenID{
		"cat": {1},
		"dog": {1},
	}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, vocab.DuplicateTokenID)
}

func TestVocabularyEOSTokenID(t *testing.T) {
	t.Parallel()

	v, err := vocab.FromMap(map[string][]vocab.TokenID{"a": {0}}, 42)
	require.NoError(t, err)
	assert.Equal(t, vocab.TokenID(42), v.EOSTokenID())
}

func TestVocabularyStringsCoversEveryInternedID(t *testing.T) {
	t.Parallel()

	v, err := vocab.FromMap(map[string][]vocab.TokenID{
		"a": {1},
		"b": {2},
		"c": {3},
	}, 0)
	require.NoError(t, err)

	seen := map[string]bool{}
	for s := range v.Strings() {
		seen[s] = true
	}
	assert.Equal(t, 3, len(seen))
	assert.True(t, seen["a"])
	assert.True(t, seen["b"])
	assert.True(t, seen["c"])
}

func TestIDsForLooksUpByRawText(t *testing.T) {
	t.Parallel()

	v, err := vocab.FromMap(map[string][]vocab.TokenID{"cat": {1, 2}}, 0)
	require.NoError(t, err)

	ids, ok := v.IDsFor("cat")
	require.True(t, ok)
	assert.Equal(t, []vocab.TokenID{1, 2}, ids)

	_, ok = v.IDsFor("dog")
	assert.False(t, ok)
}

func TestFingerprintStableAcrossCalls(t *testing.T) {
	t.Parallel()

	tok := &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{"a": 0, "b": 1},
		special:    map[string]struct{}{},
		eos:        0,
	}
	f1 := vocab.Fingerprint(tok)
	f2 := vocab.Fingerprint(tok)
	assert.Equal(t, f1, f2)
}

func TestFingerprintDiffersOnVocabularyChange(t *testing.T) {
	t.Parallel()

	tok1 := &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{"a": 0},
		special:    map[string]struct{}{},
		eos:        0,
	}
	tok2 := &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{"a": 0, "b": 1},
		special:    map[string]struct{}{},
		eos:        0,
	}
	assert.NotEqual(t, vocab.Fingerprint(tok1), vocab.Fingerprint(tok2))
}
