package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"coachlens/cmd/coachctl/cmd/export"
	"coachlens/cmd/coachctl/cmd/ingest"
	"coachlens/cmd/coachctl/cmd/serve"
	"coachlens/cmd/coachctl/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coachctl",
	Short: "Coaching feedback pipeline for recorded teaching sessions",
	Long: `Coaching feedback pipeline for recorded teaching sessions.
- serve runs the HTTP API and background workers
- evaluations transcribe a session and produce a coaching report
- comparisons analyze 2-10 completed evaluations across sessions`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(ingest.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
