package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RefreshCommand represents the refresh command
type RefreshCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewRefreshCommand creates a new refresh command
func NewRefreshCommand(root *RootCommand) *RefreshCommand {
	r := &RefreshCommand{
		root: root,
	}

	r.cmd = &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Long: `Exchange the stored refresh token for a new access token.

Requires a refresh token and the client credential issued when the device
was paired.

Example:
  netstack refresh`,
		Args: cobra.NoArgs,
		RunE: r.Run,
	}

	return r
}

// Command returns the underlying cobra command
func (r *RefreshCommand) Command() *cobra.Command {
	return r.cmd
}

// Run executes the refresh command
func (r *RefreshCommand) Run(cmd *cobra.Command, args []string) error {
	authService := r.root.Container().AuthService()

	if err := authService.Refresh(cmd.Context()); err != nil {
		return explain(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Token refreshed")
	return nil
}
