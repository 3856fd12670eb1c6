// Package cmd provides the command-line interface for netstack.
// It contains all cobra commands and their implementations.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamui-project/netstack/internal/di"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"
)

// RootCommand represents the root CLI command
type RootCommand struct {
	container *di.Container
	cmd       *cobra.Command

	// Subcommands
	configureCmd *ConfigureCommand
	loginCmd     *LoginCommand
	pairCmd      *PairCommand
	refreshCmd   *RefreshCommand
	expireCmd    *ExpireCommand
	logoutCmd    *LogoutCommand
	statusCmd    *StatusCommand
	requestCmd   *RequestCommand
}

// NewRootCommand creates a new root command
func NewRootCommand() *RootCommand {
	r := &RootCommand{}

	r.cmd = &cobra.Command{
		Use:   "netstack",
		Short: "netstack - authenticated requests against a REST backend",
		Long: `netstack manages OAuth2 credentials for a REST backend and issues
authenticated requests with them.

Credentials are kept in the system keyring, scoped to the current session.

To get started, run:
  netstack configure --api-url https://api.example.com/ --token-url https://api.example.com/oauth/token --namespace com.example.app
  netstack login
  netstack request GET users/me`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.initialize(cmd)
		},
	}

	// Global flags
	r.cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json)")
	r.cmd.PersistentFlags().String("session", "", "Namespace of a configured session to use instead of the last one")

	// Initialize subcommands (will be wired after container init)
	r.configureCmd = NewConfigureCommand(r)
	r.loginCmd = NewLoginCommand(r)
	r.pairCmd = NewPairCommand(r)
	r.refreshCmd = NewRefreshCommand(r)
	r.expireCmd = NewExpireCommand(r)
	r.logoutCmd = NewLogoutCommand(r)
	r.statusCmd = NewStatusCommand(r)
	r.requestCmd = NewRequestCommand(r)

	// Add subcommands
	r.cmd.AddCommand(r.configureCmd.Command())
	r.cmd.AddCommand(r.loginCmd.Command())
	r.cmd.AddCommand(r.pairCmd.Command())
	r.cmd.AddCommand(r.refreshCmd.Command())
	r.cmd.AddCommand(r.expireCmd.Command())
	r.cmd.AddCommand(r.logoutCmd.Command())
	r.cmd.AddCommand(r.statusCmd.Command())
	r.cmd.AddCommand(r.requestCmd.Command())

	return r
}

// initialize sets up the DI container and selects the session
func (r *RootCommand) initialize(cmd *cobra.Command) error {
	// Skip if container is already set (e.g., for testing)
	if r.container == nil {
		var err error
		r.container, err = di.NewContainer(Version)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
	}

	namespace, _ := cmd.Flags().GetString("session")
	if namespace == "" {
		return nil
	}

	cfg, err := r.container.SessionService().Load(namespace)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", namespace, err)
	}
	if cfg == nil {
		return fmt.Errorf("session %q is not configured. Run 'netstack configure' first", namespace)
	}
	return nil
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Container returns the DI container
func (r *RootCommand) Container() *di.Container {
	return r.container
}

// SetContainer sets a custom container (for testing)
func (r *RootCommand) SetContainer(c *di.Container) {
	r.container = c
}

// Execute is the main entry point for the CLI
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
