package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"library-catalog/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the library CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Library catalog with new-arrival notifications",
		Long: `Manage a library catalog: add books, notify registered users about new
arrivals, and record loans with an email confirmation.

Without --db (or db.path in library.yaml) every command works on an empty
in-memory catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./library.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewAddBookCommand(opts))
	cmd.AddCommand(NewBooksCommand(opts))
	cmd.AddCommand(NewRegisterUserCommand(opts))
	cmd.AddCommand(NewLoanCommand(opts))
	cmd.AddCommand(NewLoansCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the CLI with args and returns the process exit code.
func ExecuteArgs(args []string) int {
	defer logger.Sync()
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !IsReported(err) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}
