package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-catalog/library"
)

// RegisterUserOptions holds flags for the register-user command.
type RegisterUserOptions struct {
	*RootOptions
	ID    string
	Email string
}

// NewRegisterUserCommand creates the register-user command.
func NewRegisterUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterUserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register-user",
		Short: "Store a user who is notified about every new book",
		Long: `Store a user in the database. Every later command that opens the same
database subscribes the stored users, so add-book notifies them.

Registering an existing ID updates its email address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegisterUser(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "user ID (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runRegisterUser(opts *RegisterUserOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return NewExitError(ExitCommandError, "register-user needs a database: pass --db or set db.path")
	}

	id, email := strings.TrimSpace(opts.ID), strings.TrimSpace(opts.Email)
	if id == "" || email == "" {
		return NewExitError(ExitCommandError, "user ID and email must not be empty")
	}

	user := library.NewUser(id, email)
	if err := a.db.SaveUser(user); err != nil {
		return a.fail(fmt.Errorf("save user %s: %w", id, err))
	}
	a.log.Info("user registered", zap.String("id", id), zap.String("email", email))

	return a.out.Success(user, fmt.Sprintf("Registered user %s <%s>", user.ID, user.Email))
}
