package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"slyc/internal/buildpipeline"
	"slyc/internal/diag"
	"slyc/internal/driver"
	"slyc/internal/trace"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] [template.html|directory]",
		Short: "Compile templates into instruction streams",
		Long: `Compile a template or every .html/.htm template under a directory, report
diagnostics and optionally emit the generated instruction streams. Without an
argument the templates directory of the nearest slyc.toml is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
	cmd.Flags().String("emit", "none", "emit compiled programs (none|dump|json)")
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	cmd.Flags().Bool("cache", false, "reuse compiled programs from the user cache directory")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	return cmd
}

// compileSettings is what runCompile needs after flags and slyc.toml are merged.
type compileSettings struct {
	target           string
	emit             buildpipeline.EmitKind
	diag             diagOutput
	jobs             int
	maxDiagnostics   int
	cache            bool
	ui               progressUI
	quiet            bool
	timings          bool
	warningsAsErrors bool
}

func readCompileSettings(cmd *cobra.Command, args []string) (compileSettings, error) {
	var s compileSettings
	emitStr, err := cmd.Flags().GetString("emit")
	if err != nil {
		return s, fmt.Errorf("failed to get emit flag: %w", err)
	}
	if s.emit, err = buildpipeline.ParseEmitKind(emitStr); err != nil {
		return s, err
	}
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	if s.diag.format, err = readDiagFormat(formatStr); err != nil {
		return s, err
	}
	if s.diag.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.diag.suggest, err = cmd.Flags().GetBool("suggest"); err != nil {
		return s, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if s.diag.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return s, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if s.diag.color, err = useColor(cmd); err != nil {
		return s, err
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readProgressUI(uiStr); err != nil {
		return s, err
	}
	if s.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return s, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if s.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if s.cache, err = cmd.Flags().GetBool("cache"); err != nil {
		return s, fmt.Errorf("failed to get cache flag: %w", err)
	}

	manifest, found, err := loadProjectManifest(".")
	if err != nil {
		return s, err
	}
	if len(args) == 1 {
		s.target = args[0]
	} else {
		if !found {
			return s, errors.New(noManifestMessage)
		}
		if s.target, err = manifest.templatesDir(); err != nil {
			return s, err
		}
	}
	// флаги сильнее манифеста
	if found {
		cfg := manifest.Config.Compile
		if !cmd.Flags().Changed("jobs") && cfg.Jobs > 0 {
			s.jobs = cfg.Jobs
		}
		if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && cfg.MaxDiagnostics > 0 {
			s.maxDiagnostics = cfg.MaxDiagnostics
		}
		if !cmd.Flags().Changed("cache") && cfg.Cache {
			s.cache = true
		}
	}
	return s, nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	s, err := readCompileSettings(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile")
	defer span.End("")

	st, err := os.Stat(s.target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	baseDir := s.target
	if !st.IsDir() {
		baseDir = filepath.Dir(s.target)
	}

	req := &buildpipeline.CompileRequest{
		TargetPath:            s.target,
		BaseDir:               baseDir,
		MaxDiagnostics:        s.maxDiagnostics,
		Jobs:                  s.jobs,
		EnableTimings:         s.timings,
		AllowDiagnosticsError: true,
		WarningsAsErrors:      s.warningsAsErrors,
	}
	if s.cache {
		cache, cacheErr := driver.OpenDiskCache("slyc")
		if cacheErr != nil {
			return fmt.Errorf("failed to open cache: %w", cacheErr)
		}
		req.Cache = cache
	}

	stdout := cmd.OutOrStdout()
	var result buildpipeline.CompileResult
	if st.IsDir() && wantProgressUI(s.ui, stdout, s.quiet) {
		files, listErr := buildpipeline.ProgressFiles(s.target, baseDir, true)
		if listErr != nil {
			return listErr
		}
		result, err = runCompileWithUI(ctx, stdout, "compiling "+s.target, files, req)
	} else {
		result, err = buildpipeline.Compile(ctx, req)
	}
	if err != nil {
		return err
	}

	// с --emit stdout занят программами
	diagOut := stdout
	if s.emit != buildpipeline.EmitNone {
		diagOut = cmd.ErrOrStderr()
	}
	if err := printDiagnostics(diagOut, result.Results, result.FileSet, s.diag); err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}
	if err := buildpipeline.Emit(stdout, &result, s.emit); err != nil {
		return fmt.Errorf("failed to emit: %w", err)
	}

	if s.timings {
		if err := printStageTimings(cmd.ErrOrStderr(), result.Timings); err != nil {
			return err
		}
	}
	failed := result.HasErrors() || (s.warningsAsErrors && result.HasWarnings())
	if !s.quiet && s.diag.format == diagFormatPretty {
		printSummary(cmd.ErrOrStderr(), result, s.diag.color)
	}
	span.Set("templates", fmt.Sprint(len(result.Results)))
	if failed {
		return errDiagnostics
	}
	return nil
}

func printSummary(w io.Writer, result buildpipeline.CompileResult, colorOn bool) {
	var errs, warns, cached int
	for i := range result.Results {
		r := &result.Results[i]
		if r.Cached {
			cached++
		}
		for _, d := range r.Bag.Items() {
			switch d.Severity {
			case diag.SevError:
				errs++
			case diag.SevWarning:
				warns++
			}
		}
	}
	line := fmt.Sprintf("compiled %d template(s): %d error(s), %d warning(s)", len(result.Results), errs, warns)
	if cached > 0 {
		line += fmt.Sprintf(", %d cached", cached)
	}
	c := color.New(color.FgGreen, color.Bold)
	if errs > 0 {
		c = color.New(color.FgRed, color.Bold)
	}
	if colorOn {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintln(w, c.Sprint(line))
}
