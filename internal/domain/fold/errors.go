package fold

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch is the kind of every SchemaMismatchError.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError lists the columns a backing log must carry next to the
// columns it actually carries.
type SchemaMismatchError struct {
	Expected []string
	Found    []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: expected columns [%s], found [%s]",
		strings.Join(e.Expected, ", "), strings.Join(e.Found, ", "))
}

// Is makes errors.Is(err, ErrSchemaMismatch) match.
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
