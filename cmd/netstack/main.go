// Package main is the entry point for the netstack CLI.
// netstack manages OAuth2 credentials for a REST backend and sends
// authenticated requests with them.
package main

import (
	"os"

	"github.com/kamui-project/netstack/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
