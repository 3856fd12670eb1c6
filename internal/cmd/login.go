package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// LoginCommand represents the login command
type LoginCommand struct {
	root *RootCommand
	cmd  *cobra.Command

	username      string
	passwordStdin bool
}

// NewLoginCommand creates a new login command
func NewLoginCommand(root *RootCommand) *LoginCommand {
	l := &LoginCommand{
		root: root,
	}

	l.cmd = &cobra.Command{
		Use:   "login",
		Short: "Log in with a username and password",
		Long: `Log in to the current session with a username and password.

The password grant is sent to the session's token endpoint. On success the
token is stored in the keyring under the session namespace.

Examples:
  netstack login
  netstack login --username ann
  echo "$PASSWORD" | netstack login --username ann --password-stdin`,
		Args: cobra.NoArgs,
		RunE: l.Run,
	}

	l.cmd.Flags().StringVarP(&l.username, "username", "u", "", "Username")
	l.cmd.Flags().BoolVar(&l.passwordStdin, "password-stdin", false, "Read the password from standard input")

	return l
}

// Command returns the underlying cobra command
func (l *LoginCommand) Command() *cobra.Command {
	return l.cmd
}

// Run executes the login command
func (l *LoginCommand) Run(cmd *cobra.Command, args []string) error {
	// Get auth service from DI container
	authService := l.root.Container().AuthService()

	username := l.username
	if username == "" {
		if err := survey.AskOne(&survey.Input{Message: "Username:"}, &username, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	var password string
	if l.passwordStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	} else {
		if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Logging in..."
	s.Start()
	err := authService.Authenticate(cmd.Context(), username, password)
	s.Stop()
	if err != nil {
		return explain(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", username)
	return nil
}
