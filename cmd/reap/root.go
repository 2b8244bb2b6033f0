package main

import (
	"errors"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"reap/internal/app"
	"reap/internal/config"
	"reap/internal/engine"
	"reap/internal/match"
	"reap/internal/patterns"
	"reap/internal/report"
	"reap/internal/signal"
)

var (
	flagWait      float64
	flagNoKill    bool
	flagTerminate string
	flagKill      string
	flagWhole     bool
	flagUser      string
	flagMine      bool
	flagDryRun    bool
	flagVerbose   bool
	flagQuiet     bool
	flagColor     string
	flagConfig    string
)

func init() {
	f := rootCmd.Flags()
	f.Float64VarP(&flagWait, "wait-time", "w", 5, "Seconds to wait for processes to terminate; 0 disables waiting")
	f.BoolVar(&flagNoKill, "no-kill", false, "Leave processes that outlive the wait time alone and exit with an error")
	f.StringVarP(&flagTerminate, "terminate-signal", "s", "", "Signal used to request termination, by name or number (default term)")
	f.StringVar(&flagKill, "kill-signal", "", "Signal used to force-kill survivors, by name or number (default kill)")
	f.BoolVarP(&flagWhole, "whole-command", "W", false, "Match the whole command line rather than the executable basename")
	f.StringVarP(&flagUser, "user", "u", "", "Only match processes owned by the named user")
	f.BoolVarP(&flagMine, "mine", "m", false, "Only match processes owned by you")
	f.BoolVarP(&flagDryRun, "dry-run", "n", false, "Report what would be done without sending any signals (implies --verbose)")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Narrate every action")
	f.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output")
	f.StringVar(&flagColor, "color", "", "Color output: auto, always or never (default auto)")
	f.StringVar(&flagConfig, "config", "", "Path to a JSON defaults file")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// errRunFailed signals a non-zero exit without an extra message; the
// reporter has already narrated what went wrong.
var errRunFailed = errors.New("run failed")

func runRoot(cmd *cobra.Command, args []string) error {
	cfgPath := flagConfig
	if cfgPath == "" {
		// The conventional config file is optional; an explicit
		// --config path must exist.
		cfgPath = config.DefaultPath()
		if _, err := os.Stat(cfgPath); err != nil {
			cfgPath = ""
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		report.New(report.Normal, match.Basename, report.ColorAuto).Fatal(err)
		return err
	}

	verbosity := report.Normal
	switch {
	case flagDryRun || flagVerbose:
		verbosity = report.Verbose
	case flagQuiet:
		verbosity = report.Quiet
	}

	mode := match.Basename
	if flagWhole {
		mode = match.Commandline
	}

	colorValue := flagColor
	if colorValue == "" {
		colorValue = cfg.ColorMode
	}
	colorMode, err := report.ParseColorMode(colorValue)
	if err != nil {
		report.New(verbosity, mode, report.ColorAuto).Fatal(err)
		return err
	}
	console := report.New(verbosity, mode, colorMode)

	termValue := flagTerminate
	if termValue == "" {
		termValue = cfg.TerminateSignal
	}
	termSig, err := signal.Parse(termValue)
	if err != nil {
		console.Fatal(err)
		return err
	}

	killValue := flagKill
	if killValue == "" {
		killValue = cfg.KillSignal
	}
	killSig, err := signal.Parse(killValue)
	if err != nil {
		console.Fatal(err)
		return err
	}

	wait := cfg.Wait
	if cmd.Flags().Changed("wait-time") {
		wait = time.Duration(flagWait * float64(time.Second))
	}
	if wait < 0 {
		err := errors.New("wait time must not be negative")
		console.Fatal(err)
		return err
	}

	if isatty.IsTerminal(os.Stdin.Fd()) {
		console.Warn("Reading pattern list from TTY stdin. Exit with ^D when you are done, or ^C to abort.")
	}
	pats, err := patterns.Read(os.Stdin)
	if err != nil {
		console.Fatal(err)
		return err
	}

	res, err := app.Run(cmd.Context(), app.RunParams{
		Patterns: pats,
		Mode:     mode,
		Policy: engine.Policy{
			Terminate: termSig,
			Kill:      killSig,
			Wait:      wait,
			ForceKill: !flagNoKill,
			DryRun:    flagDryRun,
		},
		User:         flagUser,
		Mine:         flagMine,
		PollInterval: cfg.PollInterval,
	}, console)
	if err != nil {
		console.Fatal(err)
		return err
	}
	if !res.Success {
		return errRunFailed
	}
	return nil
}
