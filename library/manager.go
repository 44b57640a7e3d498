package library

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LibraryManager owns the catalog, the loan history and the subscriber list.
// It is safe for concurrent use; notifications and emails are delivered
// synchronously on the calling goroutine after the state change is recorded.
type LibraryManager struct {
	mu        sync.RWMutex
	books     []Book
	loans     []Loan
	observers []Observer

	email EmailSender
	store Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a LibraryManager.
type Option func(*LibraryManager)

// WithStore writes every added book and recorded loan through to s and
// answers loan queries from it. The default store keeps everything in memory.
func WithStore(s Store) Option { return func(lm *LibraryManager) { lm.store = s } }

func WithLogger(l *zap.Logger) Option { return func(lm *LibraryManager) { lm.log = l } }

// WithClock replaces time.Now for loan timestamps.
func WithClock(now func() time.Time) Option { return func(lm *LibraryManager) { lm.now = now } }

// WithIDGenerator replaces the UUIDv7 loan ID generator.
func WithIDGenerator(gen func() string) Option { return func(lm *LibraryManager) { lm.newID = gen } }

// NewLibraryManager creates a manager that confirms loans through email.
func NewLibraryManager(email EmailSender, opts ...Option) *LibraryManager {
	lm := &LibraryManager{
		email: email,
		store: newMemoryStore(),
		log:   zap.NewNop(),
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(lm)
	}
	if lm.email == nil {
		lm.email = NewConsoleEmailService(nil)
	}
	lm.log = lm.log.Named("library")
	return lm
}

var (
	instance     *LibraryManager
	instanceOnce sync.Once
)

// GetInstance returns the process-wide manager, creating it with email and
// opts on the first call. Later calls return the same manager and report
// false: their arguments were not used, and a sender passed then is logged as
// ignored on the shared manager's logger.
func GetInstance(email EmailSender, opts ...Option) (*LibraryManager, bool) {
	created := false
	instanceOnce.Do(func() {
		instance = NewLibraryManager(email, opts...)
		created = true
	})
	if !created && (email != nil || len(opts) > 0) {
		instance.log.Warn("arguments ignored: shared manager already exists",
			zap.Bool("email_sender", email != nil),
			zap.Int("options", len(opts)))
	}
	return instance, created
}

// Load replaces the in-memory catalog and loan history with the store's
// contents. Subscribers are not notified about loaded books.
func (lm *LibraryManager) Load() error {
	books, err := lm.store.LoadBooks()
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	loans, err := lm.store.LoadLoans()
	if err != nil {
		return fmt.Errorf("load loans: %w", err)
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.books = books
	lm.loans = loans
	lm.log.Debug("state loaded", zap.Int("books", len(books)), zap.Int("loans", len(loans)))
	return nil
}

// Close closes the underlying store.
func (lm *LibraryManager) Close() error { return lm.store.Close() }

// ------------------ Subscribers ------------------

// AddObserver appends o to the subscriber list. Registering the same
// observer twice delivers every message to it twice.
func (lm *LibraryManager) AddObserver(o Observer) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.observers = append(lm.observers, o)
	lm.log.Debug("observer added", zap.Int("observers", len(lm.observers)))
}

// RemoveObserver drops the earliest registration of o and reports whether
// one was found. Observers are compared with ==, so o must be comparable.
func (lm *LibraryManager) RemoveObserver(o Observer) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for i, existing := range lm.observers {
		if existing == o {
			lm.observers = slices.Delete(lm.observers, i, i+1)
			return true
		}
	}
	return false
}

func (lm *LibraryManager) ObserverCount() int {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return len(lm.observers)
}

// notifyAll runs without the lock held so observers may call back into the
// manager. A panicking observer stops the remaining deliveries.
func (lm *LibraryManager) notifyAll(observers []Observer, message string) {
	for _, o := range observers {
		o.Notify(message)
	}
}

// ------------------ Catalog ------------------

// AddBook appends book to the catalog and tells every subscriber, in
// registration order. Books without an ISBN are rejected with ErrInvalidBook.
func (lm *LibraryManager) AddBook(book Book) error {
	if err := book.Validate(); err != nil {
		lm.log.Warn("book rejected", zap.String("title", book.Title), zap.Error(err))
		return fmt.Errorf("add book %q: %w", book.Title, err)
	}

	observers, err := lm.appendBook(book)
	if err != nil {
		lm.log.Error("book not saved", zap.String("isbn", book.ISBN), zap.Error(err))
		return fmt.Errorf("save book %s: %w", book.ISBN, err)
	}

	lm.log.Info("book added",
		zap.String("isbn", book.ISBN),
		zap.String("title", book.Title),
		zap.Int("subscribers", len(observers)))
	lm.notifyAll(observers, "New book added: "+book.Title)
	return nil
}

func (lm *LibraryManager) appendBook(book Book) ([]Observer, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if err := lm.store.SaveBook(book); err != nil {
		return nil, err
	}
	lm.books = append(lm.books, book)
	return slices.Clone(lm.observers), nil
}

// Books returns a copy of the catalog in insertion order.
func (lm *LibraryManager) Books() []Book {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return slices.Clone(lm.books)
}

// FindBook returns the first catalog entry with the given ISBN.
func (lm *LibraryManager) FindBook(isbn string) (Book, bool) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.findLocked(isbn)
}

func (lm *LibraryManager) findLocked(isbn string) (Book, bool) {
	i := slices.IndexFunc(lm.books, func(b Book) bool { return b.ISBN == isbn })
	if i < 0 {
		return Book{}, false
	}
	return lm.books[i], true
}

// SearchBooks returns books whose title or author contains q, ignoring case.
// An empty query matches nothing.
func (lm *LibraryManager) SearchBooks(q string) []Book {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []Book{}
	}
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	results := []Book{}
	for _, b := range lm.books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			results = append(results, b)
		}
	}
	return results
}

// ------------------ Circulation ------------------

// LoanBook records that borrower (an email address) borrowed the book with the
// given ISBN and emails them a confirmation. An unknown ISBN returns a
// *NotFoundError and leaves the loan history untouched.
func (lm *LibraryManager) LoanBook(isbn, borrower string) (Loan, error) {
	book, loan, err := lm.recordLoan(isbn, borrower)
	if err != nil {
		return Loan{}, err
	}

	lm.log.Info("book loaned",
		zap.String("loan_id", loan.ID),
		zap.String("isbn", isbn),
		zap.String("borrower", borrower))
	lm.email.SendEmail(borrower, "You borrowed the book "+book.Title)
	return loan, nil
}

func (lm *LibraryManager) recordLoan(isbn, borrower string) (Book, Loan, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	book, ok := lm.findLocked(isbn)
	if !ok {
		lm.log.Warn("loan refused: unknown ISBN", zap.String("isbn", isbn), zap.String("borrower", borrower))
		return Book{}, Loan{}, &NotFoundError{ISBN: isbn}
	}

	loan := Loan{ID: lm.newID(), ISBN: isbn, Borrower: borrower, Date: lm.now()}
	if err := lm.store.SaveLoan(loan); err != nil {
		lm.log.Error("loan not saved", zap.String("isbn", isbn), zap.Error(err))
		return Book{}, Loan{}, fmt.Errorf("save loan: %w", err)
	}
	lm.loans = append(lm.loans, loan)
	return book, loan, nil
}

// Loans returns a copy of the loan history in the order loans were made.
func (lm *LibraryManager) Loans() []Loan {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return slices.Clone(lm.loans)
}

// QueryLoans returns the loans matching f, as filtered by the store.
func (lm *LibraryManager) QueryLoans(f LoanFilter) ([]Loan, error) {
	loans, err := lm.store.QueryLoans(f)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	return loans, nil
}

// LoansFor is QueryLoans filtered by borrower.
func (lm *LibraryManager) LoansFor(borrower string) ([]Loan, error) {
	return lm.QueryLoans(LoanFilter{Borrower: borrower})
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	return fmt.Sprintf("%-15s %-40s %-25s", b.ISBN, b.Title, b.Author)
}

// PrettyLoan formats a loan for lists.
func PrettyLoan(l Loan) string {
	return fmt.Sprintf("%-36s %-15s %-30s %s", l.ID, l.ISBN, l.Borrower, l.Date.Format(time.RFC3339))
}
