package cmd

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	iface "github.com/kamui-project/netstack/internal/service/interface"
)

// StatusCommand represents the status command
type StatusCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewStatusCommand creates a new status command
func NewStatusCommand(root *RootCommand) *StatusCommand {
	s := &StatusCommand{
		root: root,
	}

	s.cmd = &cobra.Command{
		Use:   "status",
		Short: "Show the current session and its credentials",
		Long: `Show the current session and the state of its stored credentials.

Examples:
  netstack status
  netstack status -o json`,
		Args: cobra.NoArgs,
		RunE: s.Run,
	}

	return s
}

// Command returns the underlying cobra command
func (s *StatusCommand) Command() *cobra.Command {
	return s.cmd
}

// sessionStatus is the JSON shape of the status command
type sessionStatus struct {
	APIBaseURL          string `json:"api_base_url"`
	SecondaryAPIBaseURL string `json:"secondary_api_base_url,omitempty"`
	TokenEndpointURL    string `json:"token_endpoint_url"`
	*iface.AuthStatus
}

// Run executes the status command
func (s *StatusCommand) Run(cmd *cobra.Command, args []string) error {
	container := s.root.Container()

	cfg, err := container.SessionService().Current()
	if err != nil {
		return explain(err)
	}
	status, err := container.AuthService().Status(cmd.Context())
	if err != nil {
		return explain(err)
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(cmd.OutOrStdout(), sessionStatus{
			APIBaseURL:          cfg.APIBaseURL,
			SecondaryAPIBaseURL: cfg.SecondaryAPIBaseURL,
			TokenEndpointURL:    cfg.TokenEndpointURL,
			AuthStatus:          status,
		})
	}

	expires := "-"
	if !status.ExpiresAt.IsZero() {
		expires = status.ExpiresAt.Local().Format(time.RFC1123)
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(header("FIELD", "VALUE"))
	t.AppendRows([]table.Row{
		{"Namespace", status.Namespace},
		{"API", cfg.APIBaseURL},
		{"Secondary API", orDash(cfg.SecondaryAPIBaseURL)},
		{"Token endpoint", cfg.TokenEndpointURL},
		{"State", string(status.State)},
		{"Expires", expires},
		{"Refresh token", yesNo(status.HasRefreshToken)},
		{"Client credential", yesNo(status.HasClientCredential)},
	})
	t.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
