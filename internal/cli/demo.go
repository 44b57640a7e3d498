package cli

import (
	"github.com/spf13/cobra"

	"library-catalog/internal/logger"
	"library-catalog/library"
)

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the subscribe, add and loan walkthrough",
		Long: `Run the walkthrough on a fresh in-memory catalog: user01 subscribes,
"The Great Gatsby" is added (user01 is notified) and then loaned to
user01@example.com (a confirmation email is printed).

The database is never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(rootOpts, cmd)
		},
	}
}

func runDemo(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := logger.Get()
	w := notifyWriter(opts, cfg, cmd)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	lm := library.NewLibraryManager(
		library.MultiEmailService{library.NewConsoleEmailService(w), library.NewLogEmailService(log)},
		library.WithLogger(log),
	)

	user := library.NewUser("user01", "user01@example.com").WithOutput(w)
	lm.AddObserver(user)

	book := library.NewBookBuilder().
		SetTitle("The Great Gatsby").
		SetAuthor("F. Scott Fitzgerald").
		SetISBN("123456789").
		Build()

	if err := lm.AddBook(book); err != nil {
		return WrapExitError(ExitFailure, "demo: add book", err)
	}
	loan, err := lm.LoanBook(book.ISBN, user.Email)
	if err != nil {
		return WrapExitError(ExitFailure, "demo: loan book", err)
	}

	return out.Success(map[string]interface{}{
		"user":  user,
		"book":  book,
		"loans": []library.Loan{loan},
	})
}
