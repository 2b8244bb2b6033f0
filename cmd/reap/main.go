package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reap",
	Short: "Gracefully terminate processes matching patterns from stdin",
	Long: `reap reads a newline-delimited list of patterns from stdin, finds live
processes matching any of them, sends each a terminate signal, waits a
bounded period for voluntary exit, and force-kills survivors unless told
otherwise. Lines may carry trailing #-comments; blank lines are ignored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
