package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	require.NoError(t, err, "new db")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBooksRoundTripInOrder(t *testing.T) {
	db := tempDB(t)
	books := []Book{
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "123456789"},
		{Title: "1984", Author: "George Orwell", ISBN: "987654321"},
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "123456789"},
	}
	for _, b := range books {
		require.NoError(t, db.SaveBook(b))
	}

	got, err := db.LoadBooks()
	require.NoError(t, err)
	assert.Equal(t, books, got)
}

func TestEmptyDatabase(t *testing.T) {
	db := tempDB(t)

	books, err := db.LoadBooks()
	require.NoError(t, err)
	assert.Empty(t, books)

	loans, err := db.LoadLoans()
	require.NoError(t, err)
	assert.Empty(t, loans)

	users, err := db.LoadUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSaveUserUpdatesEmail(t *testing.T) {
	db := tempDB(t)
	require.NoError(t, db.SaveUser(NewUser("user02", "b@example.com")))
	require.NoError(t, db.SaveUser(NewUser("user01", "old@example.com")))
	require.NoError(t, db.SaveUser(NewUser("user01", "user01@example.com")))

	users, err := db.LoadUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user01", users[0].ID)
	assert.Equal(t, "user01@example.com", users[0].Email)
	assert.Equal(t, "user02", users[1].ID)
}

func TestQueryLoansFilters(t *testing.T) {
	db := tempDB(t)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	loans := []Loan{
		{ID: "l1", ISBN: "123456789", Borrower: "a@example.com", Date: base},
		{ID: "l2", ISBN: "987654321", Borrower: "a@example.com", Date: base.Add(time.Hour)},
		{ID: "l3", ISBN: "123456789", Borrower: "b@example.com", Date: base.Add(2 * time.Hour)},
	}
	for _, l := range loans {
		require.NoError(t, db.SaveLoan(l))
	}

	tests := []struct {
		name   string
		filter LoanFilter
		want   []string
	}{
		{name: "all", filter: LoanFilter{}, want: []string{"l1", "l2", "l3"}},
		{name: "by isbn", filter: LoanFilter{ISBN: "123456789"}, want: []string{"l1", "l3"}},
		{name: "by borrower", filter: LoanFilter{Borrower: "a@example.com"}, want: []string{"l1", "l2"}},
		{name: "both", filter: LoanFilter{ISBN: "123456789", Borrower: "b@example.com"}, want: []string{"l3"}},
		{name: "none", filter: LoanFilter{ISBN: "000000000"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.QueryLoans(tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	all, err := db.LoadLoans()
	require.NoError(t, err)
	assert.True(t, all[1].Date.Equal(loans[1].Date))
}

func TestDuplicateLoanIDRejected(t *testing.T) {
	db := tempDB(t)
	l := Loan{ID: "same", ISBN: "123456789", Borrower: "a@example.com", Date: time.Now()}
	require.NoError(t, db.SaveLoan(l))
	assert.Error(t, db.SaveLoan(l))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lib.db")
	db, err := NewDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveBook(Book{Title: "Kept", ISBN: "1"}))
	require.NoError(t, db.Close())

	db, err = NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	books, err := db.LoadBooks()
	require.NoError(t, err)
	assert.Equal(t, []Book{{Title: "Kept", ISBN: "1"}}, books)
}

func TestInMemoryDatabase(t *testing.T) {
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.SaveBook(Book{Title: "Ephemeral", ISBN: "42"}))
	books, err := db.LoadBooks()
	require.NoError(t, err)
	assert.Len(t, books, 1)
}
