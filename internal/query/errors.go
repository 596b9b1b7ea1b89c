package query

import (
	"errors"
	"fmt"
)

// ErrInvalidPagination is returned when a patch sets page < 1 or page size <= 0.
var ErrInvalidPagination = errors.New("invalid pagination")

// InvalidQueryKeyError reports a filter, flag or sort key the screen does not
// declare. It is a caller bug, not a runtime condition.
type InvalidQueryKeyError struct {
	Screen string
	Kind   string
	Key    string
}

func (e *InvalidQueryKeyError) Error() string {
	if e.Screen == "" {
		return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s: unknown %s %q", e.Screen, e.Kind, e.Key)
}

// IsInvalidQueryKey reports whether err wraps an *InvalidQueryKeyError.
func IsInvalidQueryKey(err error) bool {
	var ik *InvalidQueryKeyError
	return errors.As(err, &ik)
}
