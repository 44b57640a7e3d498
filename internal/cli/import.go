package cli

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-catalog/library"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	File  string
	Quiet bool
}

// bookRecord is one entry of the import file.
type bookRecord struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// ImportResult summarises an import run.
type ImportResult struct {
	Imported []library.Book `json:"imported"`
	Skipped  []library.Book `json:"skipped"`
	Errors   int            `json:"errors"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk import books from a JSON file",
		Long: `Import a JSON array of {"title", "author", "isbn"} objects into the catalog.

Books whose ISBN is already in the catalog are skipped. Registered users are
notified about every imported book unless --quiet is given.`,
		Example: `  library import --db library.db --file books.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "JSON file to import (required)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not notify registered users")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	records, err := readBookRecords(opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read import file", err)
	}

	a, err := openAppWith(opts.RootOptions, cmd, !opts.Quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return NewExitError(ExitCommandError, "import needs a database: pass --db or set db.path")
	}

	a.log.Info("import started", zap.String("file", opts.File), zap.Int("records", len(records)))
	res := importBooks(a.mgr, records)
	a.log.Info("import finished",
		zap.Int("imported", len(res.Imported)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("errors", res.Errors))

	return a.out.Success(res, importReport(opts.File, records, res, a.mgr.Books())...)
}

func readBookRecords(path string) ([]bookRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []bookRecord
	if err := jsoniter.ConfigFastest.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// importBooks adds every record whose ISBN is not yet in the catalog.
func importBooks(mgr *library.LibraryManager, records []bookRecord) ImportResult {
	res := ImportResult{Imported: []library.Book{}, Skipped: []library.Book{}}
	for _, r := range records {
		book := library.NewBookBuilder().
			SetTitle(strings.TrimSpace(r.Title)).
			SetAuthor(strings.TrimSpace(r.Author)).
			SetISBN(strings.TrimSpace(r.ISBN)).
			Build()

		if _, exists := mgr.FindBook(book.ISBN); exists {
			res.Skipped = append(res.Skipped, book)
			continue
		}
		if err := mgr.AddBook(book); err != nil {
			res.Errors++
			continue
		}
		res.Imported = append(res.Imported, book)
	}
	return res
}

func importReport(file string, records []bookRecord, res ImportResult, catalog []library.Book) []string {
	lines := []string{fmt.Sprintf("Imported %d of %d books from %s", len(res.Imported), len(records), file)}
	for _, b := range res.Skipped {
		lines = append(lines, fmt.Sprintf("Skipped %s: ISBN already in catalog (%s)", b.ISBN, b.Title))
	}
	if res.Errors > 0 {
		lines = append(lines, fmt.Sprintf("Errors: %d", res.Errors))
	}
	if len(res.Imported) == 0 {
		return lines
	}

	lines = append(lines, "",
		fmt.Sprintf("%-15s %-50s %-30s", "ISBN", "Title", "Author"),
		strings.Repeat("-", 97))
	for _, b := range catalog {
		lines = append(lines, fmt.Sprintf("%-15s %-50s %-30s", b.ISBN, truncate(b.Title, 50), truncate(b.Author, 30)))
	}
	return lines
}

// truncate shortens s to at most maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
