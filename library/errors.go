package library

import (
	"errors"
	"fmt"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidBook  = errors.New("book has no ISBN")
)

// NotFoundError reports a loan request for an ISBN that is not in the catalog.
type NotFoundError struct {
	ISBN string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no book with ISBN %q in catalog", e.ISBN)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrBookNotFound }
