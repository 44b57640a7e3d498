package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/library"
)

// AddBookOptions holds flags for the add-book command.
type AddBookOptions struct {
	*RootOptions
	Title  string
	Author string
	ISBN   string
}

// NewAddBookCommand creates the add-book command.
func NewAddBookCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddBookOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Add a book to the catalog and notify subscribers",
		Example: `  library add-book --db library.db --isbn 123456789 \
    --title "The Great Gatsby" --author "F. Scott Fitzgerald"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddBook(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "book title")
	cmd.Flags().StringVar(&opts.Author, "author", "", "book author")
	cmd.Flags().StringVar(&opts.ISBN, "isbn", "", "book ISBN (required)")
	_ = cmd.MarkFlagRequired("isbn")

	return cmd
}

func runAddBook(opts *AddBookOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	book := library.NewBookBuilder().
		SetTitle(strings.TrimSpace(opts.Title)).
		SetAuthor(strings.TrimSpace(opts.Author)).
		SetISBN(strings.TrimSpace(opts.ISBN)).
		Build()

	if err := a.mgr.AddBook(book); err != nil {
		return a.fail(err)
	}
	return a.out.Success(book, fmt.Sprintf("Added book %s: %s", book.ISBN, book.Title))
}

// BooksOptions holds flags for the books command.
type BooksOptions struct {
	*RootOptions
	Search string
}

// NewBooksCommand creates the books command.
func NewBooksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BooksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBooks(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "only books whose title or author contains this text")

	return cmd
}

func runBooks(opts *BooksOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	books := a.mgr.Books()
	if cmd.Flags().Changed("search") {
		books = a.mgr.SearchBooks(opts.Search)
	}

	if len(books) == 0 {
		return a.out.Success(books, "No books in library.")
	}
	lines := []string{
		fmt.Sprintf("%-15s %-40s %-25s", "ISBN", "Title", "Author"),
		strings.Repeat("-", 82),
	}
	for _, b := range books {
		lines = append(lines, library.PrettyBook(b))
	}
	return a.out.Success(books, lines...)
}
