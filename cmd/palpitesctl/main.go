// Command palpitesctl runs the scheduled jobs from a cron host.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "palpitesctl",
		Short:         "Palpites.IA job runner",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log WhatsApp messages instead of sending them")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(picksCmd())
	rootCmd.AddCommand(contentCmd())
	rootCmd.AddCommand(broadcastCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
