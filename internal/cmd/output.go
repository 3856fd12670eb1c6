package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/kamui-project/netstack/internal/api"
)

// outputFormat returns the value of the global --output flag
func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}

// outputJSON writes v as indented JSON
func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// newTable creates a table with standard styling writing to w
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// header renders table header cells
func header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, name := range names {
		row[i] = text.FgHiCyan.Sprint(name)
	}
	return row
}

// explain adds a hint to errors the user can fix by logging in again
func explain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrSessionNotConfigured) {
		return fmt.Errorf("%w. Run 'netstack configure' first", err)
	}
	if api.RequiresReauthentication(err) {
		return fmt.Errorf("%w. Please run 'netstack login' again", err)
	}
	return err
}
