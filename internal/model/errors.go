package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEntity marks a catalog entry that is not a corporate document.
	ErrInvalidEntity = errors.New("invalid catalog entity")
	// ErrNotFound is returned when a document id does not exist or is of another kind.
	ErrNotFound = errors.New("document not found")
)

// InvalidEntityError carries the offending entry id and kind.
type InvalidEntityError struct {
	ID   string
	Kind string
}

func (e *InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid catalog entity %s: kind %q is not %q", e.ID, e.Kind, DocumentKind)
}

// Is lets errors.Is(err, ErrInvalidEntity) match.
func (e *InvalidEntityError) Is(target error) bool {
	return target == ErrInvalidEntity
}
