package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Database is a SQLite-backed Store.
type Database struct {
	db *sqlx.DB

	addBookStmt *sql.Stmt
	addLoanStmt *sql.Stmt
	addUserStmt *sql.Stmt
}

const memoryPath = ":memory:"

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements. ":memory:" gives a private
// in-memory database.
func NewDatabase(dbPath string) (*Database, error) {
	var dsn string
	if dbPath == memoryPath {
		dsn = "file::memory:?_foreign_keys=1"
	} else {
		// Ensure directory exists so first-run succeeds.
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dbPath == memoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	for _, stmt := range []*sql.Stmt{d.addBookStmt, d.addLoanStmt, d.addUserStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The catalog does not de-duplicate, so isbn is deliberately not unique.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            isbn TEXT NOT NULL,
            title TEXT NOT NULL,
            author TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);`,
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS loans (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            isbn TEXT NOT NULL,
            borrower TEXT NOT NULL,
            loan_time DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans(borrower);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(`INSERT INTO books(isbn,title,author) VALUES(?,?,?)`); err != nil {
		return err
	}
	if d.addLoanStmt, err = d.db.Prepare(`INSERT INTO loans(id,isbn,borrower,loan_time) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	if d.addUserStmt, err = d.db.Prepare(`INSERT INTO users(id,email) VALUES(?,?)
        ON CONFLICT(id) DO UPDATE SET email=excluded.email`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

func (d *Database) SaveBook(b Book) error {
	_, err := d.addBookStmt.Exec(b.ISBN, b.Title, b.Author)
	return err
}

func (d *Database) SaveLoan(l Loan) error {
	_, err := d.addLoanStmt.Exec(l.ID, l.ISBN, l.Borrower, l.Date.UTC())
	return err
}

// SaveUser inserts the user or updates the email of an existing ID.
func (d *Database) SaveUser(u *User) error {
	_, err := d.addUserStmt.Exec(u.ID, u.Email)
	return err
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// LoadBooks returns the catalog in insertion order.
func (d *Database) LoadBooks() ([]Book, error) {
	books := []Book{}
	if err := d.db.Select(&books, `SELECT title,author,isbn FROM books ORDER BY id`); err != nil {
		return nil, err
	}
	return books, nil
}

// LoadUsers returns registered users ordered by ID. Their notifications go to stdout.
func (d *Database) LoadUsers() ([]*User, error) {
	var rows []User
	if err := d.db.Select(&rows, `SELECT id,email FROM users ORDER BY id`); err != nil {
		return nil, err
	}
	users := make([]*User, 0, len(rows))
	for _, r := range rows {
		users = append(users, NewUser(r.ID, r.Email))
	}
	return users, nil
}

func (d *Database) LoadLoans() ([]Loan, error) { return d.QueryLoans(LoanFilter{}) }

// QueryLoans returns the loan history matching f in the order loans were recorded.
func (d *Database) QueryLoans(f LoanFilter) ([]Loan, error) {
	ds := goqu.Dialect("sqlite3").
		From("loans").
		Select("id", "isbn", "borrower", "loan_time").
		Order(goqu.C("seq").Asc())
	if f.ISBN != "" {
		ds = ds.Where(goqu.C("isbn").Eq(f.ISBN))
	}
	if f.Borrower != "" {
		ds = ds.Where(goqu.C("borrower").Eq(f.Borrower))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build loan query: %w", err)
	}

	loans := []Loan{}
	if err := d.db.Select(&loans, query, args...); err != nil {
		return nil, err
	}
	return loans, nil
}
