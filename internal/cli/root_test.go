package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "library", cmd.Use)
	assert.Contains(t, cmd.Long, "in-memory")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"demo", "add-book", "books", "register-user", "loan", "loans", "import"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{command: "add-book", flags: []string{"isbn"}},
		{command: "register-user", flags: []string{"id", "email"}},
		{command: "loan", flags: []string{"isbn", "borrower"}},
		{command: "import", flags: []string{"file"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := NewRootCommand().Find([]string{tt.command})
			require.NoError(t, err)
			for _, name := range tt.flags {
				f := sub.Flags().Lookup(name)
				require.NotNil(t, f, "flag %s", name)
				assert.Equal(t, []string{"true"}, f.Annotations[cobra.BashCompOneRequiredFlag])
			}
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"books", "--format", "yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := WrapExitError(ExitFailure, "E404", errors.New("no book"))
	assert.Equal(t, "E404: no book", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExecuteReportsErrorsOnce(t *testing.T) {
	t.Setenv("LIBRARY_LOG_LEVEL", "error")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "reported by formatter",
			args:       []string{"loan", "--isbn", "000000000", "--borrower", "a@example.com"},
			wantCode:   ExitFailure,
			wantStdout: "Error [E404]",
		},
		{
			name:       "flag error",
			args:       []string{"books", "--format", "yaml"},
			wantCode:   ExitCommandError,
			wantStderr: "Error: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := execute(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			if tt.wantStdout != "" {
				assert.Equal(t, 1, strings.Count(stdout.String(), tt.wantStdout))
				assert.Empty(t, stderr.String())
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestIsReported(t *testing.T) {
	assert.False(t, IsReported(errors.New("plain")))
	assert.False(t, IsReported(NewExitError(ExitCommandError, "bad flag")))
	assert.True(t, IsReported(reported(WrapExitError(ExitFailure, "E404", errors.New("no book")))))
}
