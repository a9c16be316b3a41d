package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"slyc/internal/version"
)

// errDiagnostics signals that diagnostics were already printed and the
// process should exit non-zero without repeating them.
var errDiagnostics = errors.New("compilation failed")

func newRootCmd() *cobra.Command {
	var cleanup func()
	root := &cobra.Command{
		Use:   "slyc",
		Short: "Sly template compiler",
		Long: `slyc compiles HTML templates with data-sly-* directives and ${} expressions
into instruction streams, and renders them with YAML or JSON data`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			stopTracing, err := setupTracing(cmd)
			if err != nil {
				stopProfiling()
				return err
			}
			cleanup = func() {
				stopTracing()
				stopProfiling()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cleanup != nil {
				cleanup()
			}
		},
	}

	root.AddCommand(newCompileCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per template")
	root.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")
	root.PersistentFlags().Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	root.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write Go runtime trace to file")
	return root
}

// main builds the command tree and executes it. Any error exits with status 1.
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against the terminal state of stdout.
func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}

func setupColor(cmd *cobra.Command) error {
	enabled, err := useColor(cmd)
	if err != nil {
		return err
	}
	color.NoColor = !enabled
	return nil
}
