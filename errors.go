package tokenguide

import (
	"github.com/tokenguide/tokenguide/index"
	"github.com/tokenguide/tokenguide/regex"
	"github.com/tokenguide/tokenguide/vocab"
)

// Error taxonomy (spec.md section 7), re-exported at the package a caller
// actually imports so callers don't need to reach into the subordinate
// packages just to call errors.Is.
var (
	// BadPattern means the regex is syntactically invalid.
	BadPattern = regex.BadPattern
	// UnsupportedPattern means the regex uses features outside the
	// regular-language subset this system supports.
	UnsupportedPattern = regex.UnsupportedPattern
	// BadToken means a vocabulary token could not be decoded to bytes.
	BadToken = vocab.BadToken
	// UnsatisfiableVocabulary means no trajectory through the built index
	// reaches an accepting state.
	UnsatisfiableVocabulary = index.UnsatisfiableVocabulary
	// DuplicateTokenID means the same token id was associated with more
	// than one decoded string while building a Vocabulary.
	DuplicateTokenID = vocab.DuplicateTokenID
)
