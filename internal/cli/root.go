// Package cli implements the repute command-line interface: the daemon
// launcher plus client commands that talk to a running daemon over HTTP.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repute",
	Short: "Per-identity reputation ledger",
	Long: `repute maintains reputation scores for registered identities:
authorized callers submit ratings, scores decay over time, and raters
with standing carry more weight. Run 'repute serve' to start the daemon,
then use the client commands against it.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
