// Package cli implements the citadel command-line interface. The serve
// command runs the economy daemon; everything else talks to a running daemon
// over its HTTP API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "citadel",
	Short: "Apex Citadels economy core",
	Long: `The authoritative resource economy service for Apex Citadels.
It owns resource amounts, storage capacities, and passive generation,
keeps an audit history of every spend/earn/refund, and persists state
between sessions with offline catch-up.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("addr", "http://127.0.0.1:7440", "Address of the running economy daemon")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// daemonAddr returns the --addr flag value.
func daemonAddr(cmd *cobra.Command) string {
	addr, _ := cmd.Flags().GetString("addr")
	return addr
}
