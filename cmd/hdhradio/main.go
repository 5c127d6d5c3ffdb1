// Hdhradio bridges HDHomeRun radio stations into a network audio router.
//
// It discovers HDHomeRun tuners on the local network, extracts the radio
// stations from their channel lineups, and keeps an ffmpeg decode session
// running for every station the audio host currently routes, delivering
// raw PCM to the host's ingest endpoint.
//
// Usage:
//
//	hdhradio [command] [flags]
//
// Running without arguments starts the bridge ('serve').
// See 'hdhradio --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/hdhradio/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hdhradio",
	Short: "HDHomeRun radio bridge",
	Long: `Bridges HDHomeRun radio stations into a network audio router.

Discovers HDHomeRun tuners via mDNS, UDP broadcast, and subnet sweep,
classifies radio stations in their lineups, and streams decoded PCM for
every station the host routes.

If no command is specified, the bridge starts ('serve').`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the bridge when no subcommand provided
		return runServe(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hdhradio %s (commit: %s)\n", version.Version, version.Commit)
	},
}
