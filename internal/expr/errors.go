package expr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrEmptyInput indicates the input contained nothing but whitespace.
var ErrEmptyInput = errors.New("empty expression")

// ParseError reports the farthest byte offset the parser reached and the
// tokens it would have accepted there.
type ParseError struct {
	Input    string
	Offset   int
	Expected []string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("expr: syntax error at offset %d", e.Offset)
	}
	return fmt.Sprintf("expr: syntax error at offset %d: expected %s", e.Offset, joinAlternatives(e.Expected))
}

// Unwrap returns ErrEmptyInput for blank input so callers can match it.
func (e *ParseError) Unwrap() error {
	if strings.TrimSpace(e.Input) == "" {
		return ErrEmptyInput
	}
	return nil
}

// Caret renders the input with a caret under the failing offset.
func (e *ParseError) Caret() string {
	off := min(max(e.Offset, 0), len(e.Input))
	pad := utf8.RuneCountInString(e.Input[:off])
	return e.Input + "\n" + strings.Repeat(" ", pad) + "^"
}

func joinAlternatives(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
	}
}
