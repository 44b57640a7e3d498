package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/library"
)

// LoanOptions holds flags for the loan command.
type LoanOptions struct {
	*RootOptions
	ISBN     string
	Borrower string
}

// NewLoanCommand creates the loan command.
func NewLoanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Record a loan and email the borrower",
		Long: `Record that the borrower took the first catalog book with the given ISBN
and send a confirmation email to the borrower's address.

Exits with status 1 when no book has that ISBN; nothing is recorded then.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoan(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ISBN, "isbn", "", "ISBN of the book (required)")
	cmd.Flags().StringVar(&opts.Borrower, "borrower", "", "borrower email address (required)")
	_ = cmd.MarkFlagRequired("isbn")
	_ = cmd.MarkFlagRequired("borrower")

	return cmd
}

func runLoan(opts *LoanOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	loan, err := a.mgr.LoanBook(strings.TrimSpace(opts.ISBN), strings.TrimSpace(opts.Borrower))
	if err != nil {
		return a.fail(err)
	}
	return a.out.Success(loan, fmt.Sprintf("Loan %s recorded", loan.ID))
}

// LoansOptions holds flags for the loans command.
type LoansOptions struct {
	*RootOptions
	ISBN     string
	Borrower string
}

// NewLoansCommand creates the loans command.
func NewLoansCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoansOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List the loan history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoans(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ISBN, "isbn", "", "only loans of this ISBN")
	cmd.Flags().StringVar(&opts.Borrower, "borrower", "", "only loans to this address")

	return cmd
}

func runLoans(opts *LoansOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	loans, err := a.mgr.QueryLoans(library.LoanFilter{
		ISBN:     strings.TrimSpace(opts.ISBN),
		Borrower: strings.TrimSpace(opts.Borrower),
	})
	if err != nil {
		return a.fail(err)
	}
	if len(loans) == 0 {
		return a.out.Success(loans, "No loans recorded.")
	}
	lines := []string{
		fmt.Sprintf("%-36s %-15s %-30s %s", "Loan", "ISBN", "Borrower", "Date"),
		strings.Repeat("-", 110),
	}
	for _, l := range loans {
		lines = append(lines, library.PrettyLoan(l))
	}
	return a.out.Success(loans, lines...)
}
