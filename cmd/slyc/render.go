package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"slyc/internal/buildpipeline"
	"slyc/internal/trace"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [flags] <template.html>",
		Short: "Compile a template and render it with data",
		Long: `Compile a single template and execute it with YAML or JSON data. Without
--data the [render].data file of the nearest slyc.toml is used, if any.`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}
	cmd.Flags().String("data", "", "YAML or JSON data file")
	cmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	defer dumpTraceOnPanic()

	target := args[0]
	local := &flagReader{set: cmd.Flags()}
	global := &flagReader{set: cmd.Root().PersistentFlags()}
	dataPath := local.str("data")
	outputPath := local.str("output")
	formatStr := local.str("format")
	maxDiagnostics := global.integer("max-diagnostics")
	showTimings := global.boolean("timings")
	if err = errors.Join(local.err, global.err); err != nil {
		return err
	}
	format, err := readDiagFormat(formatStr)
	if err != nil {
		return err
	}
	colorOn, err := useColor(cmd)
	if err != nil {
		return err
	}

	if dataPath == "" {
		manifest, found, manifestErr := loadProjectManifest(".")
		if manifestErr != nil {
			return manifestErr
		}
		if found {
			dataPath = manifest.dataPath()
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, createErr := os.Create(outputPath)
		if createErr != nil {
			return fmt.Errorf("failed to create output: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		out = f
	}

	ctx := cmd.Context()
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "render")
	defer span.End("")

	result, err := buildpipeline.Render(ctx, &buildpipeline.RenderRequest{
		CompileRequest: buildpipeline.CompileRequest{
			TargetPath:     target,
			BaseDir:        filepath.Dir(target),
			MaxDiagnostics: maxDiagnostics,
			EnableTimings:  showTimings,
		},
		DataPath: dataPath,
		Out:      out,
	})
	if printErr := printDiagnostics(cmd.ErrOrStderr(), result.Results, result.FileSet, diagOutput{
		format:    format,
		color:     colorOn,
		withNotes: true,
	}); printErr != nil {
		return fmt.Errorf("failed to format diagnostics: %w", printErr)
	}
	if showTimings {
		if timingErr := printStageTimings(cmd.ErrOrStderr(), result.Timings); timingErr != nil {
			return timingErr
		}
	}
	if errors.Is(err, buildpipeline.ErrDiagnostics) {
		return errDiagnostics
	}
	return err
}
