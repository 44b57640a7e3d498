package library

import (
	"strings"
	"time"
)

// Book is a catalog entry. The ISBN is the catalog key; a Book is a value and
// is never mutated once built.
type Book struct {
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	ISBN   string `json:"isbn" db:"isbn"`
}

// Validate checks the catalog contract for a book: the ISBN must be present.
func (b Book) Validate() error {
	if strings.TrimSpace(b.ISBN) == "" {
		return ErrInvalidBook
	}
	return nil
}

// Loan records a book being borrowed. Borrower is the email address the
// confirmation was sent to, not a User ID.
type Loan struct {
	ID       string    `json:"id" db:"id"`
	ISBN     string    `json:"isbn" db:"isbn"`
	Borrower string    `json:"borrower" db:"borrower"`
	Date     time.Time `json:"date" db:"loan_time"`
}

// LoanFilter narrows a loan history query. Empty fields match everything.
type LoanFilter struct {
	ISBN     string
	Borrower string
}

func (f LoanFilter) matches(l Loan) bool {
	if f.ISBN != "" && l.ISBN != f.ISBN {
		return false
	}
	if f.Borrower != "" && l.Borrower != f.Borrower {
		return false
	}
	return true
}
