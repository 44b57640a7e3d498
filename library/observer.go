package library

import (
	"fmt"
	"io"
	"os"
)

// Observer receives catalog-change messages from a LibraryManager.
type Observer interface {
	Notify(message string)
}

// User is a library member. Creating a User does not subscribe it; register it
// with LibraryManager.AddObserver (or Subscribe) when it should hear about new books.
type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`

	out io.Writer
}

// NewUser returns a user that prints its notifications to stdout.
func NewUser(id, email string) *User {
	return &User{ID: id, Email: email, out: os.Stdout}
}

// WithOutput redirects the user's notifications to w.
func (u *User) WithOutput(w io.Writer) *User {
	u.out = w
	return u
}

func (u *User) Notify(message string) {
	w := u.out
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "User %s notified: %s\n", u.ID, message)
}

// Subscribe registers u with lm and returns it, for callers that want creation
// and registration in one expression.
func Subscribe(lm *LibraryManager, u *User) *User {
	lm.AddObserver(u)
	return u
}
