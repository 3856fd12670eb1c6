package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/kamui-project/netstack/internal/session"
)

// ConfigureCommand represents the configure command
type ConfigureCommand struct {
	root *RootCommand
	cmd  *cobra.Command

	apiURL          string
	secondaryAPIURL string
	secondaryPrefix string
	tokenURL        string
	namespace       string
	appSlug         string
}

// NewConfigureCommand creates a new configure command
func NewConfigureCommand(root *RootCommand) *ConfigureCommand {
	c := &ConfigureCommand{
		root: root,
	}

	c.cmd = &cobra.Command{
		Use:   "configure",
		Short: "Configure the current session",
		Long: `Configure the session netstack talks to and make it current.

The session's public settings are saved so later invocations restore it.
Credentials of different namespaces never mix.
Missing required values are prompted for.

Example:
  netstack configure \
    --api-url https://api.example.com/v1/ \
    --secondary-api-url https://hyper.example.com/ \
    --token-url https://api.example.com/oauth/token \
    --namespace com.example.app \
    --app-slug example`,
		Args: cobra.NoArgs,
		RunE: c.Run,
	}

	flags := c.cmd.Flags()
	flags.StringVar(&c.apiURL, "api-url", "", "Base URL relative endpoints resolve against")
	flags.StringVar(&c.secondaryAPIURL, "secondary-api-url", "", "Base URL for endpoints under the secondary prefix")
	flags.StringVar(&c.secondaryPrefix, "secondary-prefix", session.DefaultSecondaryPathPrefix, "Endpoint prefix routed to the secondary API")
	flags.StringVar(&c.tokenURL, "token-url", "", "OAuth2 token endpoint")
	flags.StringVar(&c.namespace, "namespace", "", "Namespace credentials are stored under")
	flags.StringVar(&c.appSlug, "app-slug", "", "Application identifier sent when pairing a device")

	return c
}

// Command returns the underlying cobra command
func (c *ConfigureCommand) Command() *cobra.Command {
	return c.cmd
}

// Run executes the configure command
func (c *ConfigureCommand) Run(cmd *cobra.Command, args []string) error {
	// Prompt for anything required that was not passed as a flag
	prompts := []struct {
		value   *string
		message string
	}{
		{&c.apiURL, "API base URL:"},
		{&c.tokenURL, "Token endpoint URL:"},
		{&c.namespace, "Namespace:"},
	}
	for _, p := range prompts {
		if *p.value != "" {
			continue
		}
		if err := survey.AskOne(&survey.Input{Message: p.message}, p.value, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	cfg := session.Config{
		APIBaseURL:          c.apiURL,
		SecondaryAPIBaseURL: c.secondaryAPIURL,
		SecondaryPathPrefix: c.secondaryPrefix,
		TokenEndpointURL:    c.tokenURL,
		Namespace:           c.namespace,
		AppSlug:             c.appSlug,
	}

	if err := c.root.Container().SessionService().SetCurrent(cfg); err != nil {
		return fmt.Errorf("failed to configure session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Session %s is now current\n", c.namespace)
	return nil
}
