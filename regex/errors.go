package regex

import (
	"errors"

	"github.com/tokenguide/tokenguide/reporter"
)

// BadPattern is returned when a regex is syntactically invalid.
var BadPattern = errors.New("bad pattern")

// UnsupportedPattern is returned when a regex uses features outside the
// regular-language subset this system supports (lookaround, backreferences).
var UnsupportedPattern = errors.New("unsupported pattern")

// errWrap lets BadPattern/UnsupportedPattern participate in errors.Is while
// still carrying position information via reporter.ErrorWithPos.
type errWrap struct {
	reporter.ErrorWithPos
	sentinel error
}

func (e errWrap) Is(target error) bool {
	return target == e.sentinel
}

func newBadPattern(pos reporter.Position, format string, args ...interface{}) error {
	return errWrap{reporter.Errorf(pos, format, args...), BadPattern}
}

func newUnsupportedPattern(pos reporter.Position, format string, args ...interface{}) error {
	return errWrap{reporter.Errorf(pos, format, args...), UnsupportedPattern}
}
