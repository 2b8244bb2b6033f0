package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"reap/internal/signal"
)

func init() {
	rootCmd.AddCommand(cmdSignals)
}

var cmdSignals = &cobra.Command{
	Use:   "signals",
	Short: "List supported signals",
	Long:  "Prints every signal reap can deliver, one per line as number<TAB>name.",
	Run: func(cmd *cobra.Command, args []string) {
		// Framing lines only show on a terminal so piped output stays
		// machine-readable.
		tty := isatty.IsTerminal(os.Stdout.Fd())
		if tty {
			fmt.Println("Currently supported signals:")
		}
		for _, sig := range signal.Signals() {
			fmt.Printf("%d\t%s\n", sig.Number(), sig)
		}
		if tty {
			fmt.Println("Signal names do not require the SIG prefix and are case-insensitive.")
		}
	},
}
