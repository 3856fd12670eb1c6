package cmd

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/briandowns/spinner"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

// openURL opens a page in the user's browser
var openURL = browser.OpenURL

// PairCommand represents the pair command
type PairCommand struct {
	root *RootCommand
	cmd  *cobra.Command

	pairingPage string
}

// NewPairCommand creates a new pair command
func NewPairCommand(root *RootCommand) *PairCommand {
	p := &PairCommand{
		root: root,
	}

	p.cmd = &cobra.Command{
		Use:   "pair [code]",
		Short: "Pair this device with a pairing code",
		Long: `Pair this device with the current session using a one-time pairing code.

The server returns a token together with a client credential used for later
refreshes. Both are stored in the keyring under the session namespace.

Examples:
  netstack pair 482913
  netstack pair --open https://example.com/devices/pair`,
		Args: cobra.MaximumNArgs(1),
		RunE: p.Run,
	}

	p.cmd.Flags().StringVar(&p.pairingPage, "open", "", "Open this pairing page in the browser before asking for the code")

	return p
}

// Command returns the underlying cobra command
func (p *PairCommand) Command() *cobra.Command {
	return p.cmd
}

// Run executes the pair command
func (p *PairCommand) Run(cmd *cobra.Command, args []string) error {
	authService := p.root.Container().AuthService()
	out := cmd.OutOrStdout()

	if p.pairingPage != "" {
		fmt.Fprintln(out, "Opening browser for pairing...")
		fmt.Fprintf(out, "If the browser doesn't open, please visit:\n%s\n\n", p.pairingPage)
		if err := openURL(p.pairingPage); err != nil {
			fmt.Fprintf(out, "Failed to open browser automatically: %v\n", err)
		}
	}

	var code string
	if len(args) == 1 {
		code = args[0]
	} else if err := survey.AskOne(&survey.Input{Message: "Pairing code:"}, &code, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Pairing device..."
	s.Start()
	err := authService.AuthenticateWithPairingCode(cmd.Context(), code)
	s.Stop()
	if err != nil {
		return explain(err)
	}

	fmt.Fprintln(out, "✓ Device paired")
	return nil
}
