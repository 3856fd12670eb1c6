package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExpireCommand represents the expire command
type ExpireCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewExpireCommand creates a new expire command
func NewExpireCommand(root *RootCommand) *ExpireCommand {
	e := &ExpireCommand{
		root: root,
	}

	e.cmd = &cobra.Command{
		Use:   "expire",
		Short: "Force the stored access token to expire",
		Long: `Mark the stored access token as expired while keeping the refresh token.

The next request refreshes the token. Useful to exercise the refresh path.

Example:
  netstack expire`,
		Args: cobra.NoArgs,
		RunE: e.Run,
	}

	return e
}

// Command returns the underlying cobra command
func (e *ExpireCommand) Command() *cobra.Command {
	return e.cmd
}

// Run executes the expire command
func (e *ExpireCommand) Run(cmd *cobra.Command, args []string) error {
	authService := e.root.Container().AuthService()

	if err := authService.ExpireAccessToken(cmd.Context()); err != nil {
		return explain(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Access token expired")
	return nil
}
