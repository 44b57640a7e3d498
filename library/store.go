package library

import (
	"slices"
	"sync"
)

// Store persists the catalog, the loan history and registered users.
type Store interface {
	SaveBook(b Book) error
	SaveLoan(l Loan) error
	SaveUser(u *User) error
	LoadBooks() ([]Book, error)
	LoadLoans() ([]Loan, error)
	LoadUsers() ([]*User, error)
	QueryLoans(f LoanFilter) ([]Loan, error)
	Close() error
}

// memoryStore is the default Store: everything lives for the life of the process.
type memoryStore struct {
	mu    sync.RWMutex
	books []Book
	loans []Loan
	users []*User
}

func newMemoryStore() *memoryStore { return &memoryStore{} }

func (m *memoryStore) SaveBook(b Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = append(m.books, b)
	return nil
}

func (m *memoryStore) SaveLoan(l Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans = append(m.loans, l)
	return nil
}

// SaveUser replaces a user with the same ID or appends a new one.
func (m *memoryStore) SaveUser(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.IndexFunc(m.users, func(e *User) bool { return e.ID == u.ID }); i >= 0 {
		m.users[i] = u
		return nil
	}
	m.users = append(m.users, u)
	return nil
}

func (m *memoryStore) LoadBooks() ([]Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.books), nil
}

func (m *memoryStore) LoadLoans() ([]Loan, error) { return m.QueryLoans(LoanFilter{}) }

func (m *memoryStore) LoadUsers() ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := slices.Clone(m.users)
	slices.SortFunc(users, func(a, b *User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return users, nil
}

// QueryLoans returns the loans matching f in the order they were saved.
func (m *memoryStore) QueryLoans(f LoanFilter) ([]Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Loan{}
	for _, l := range m.loans {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryStore) Close() error { return nil }
