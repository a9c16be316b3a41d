package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"slyc/internal/buildpipeline"
	"slyc/internal/ui"
)

// progressUI is the --ui setting: nil means auto.
type progressUI *bool

func readProgressUI(value string) (progressUI, error) {
	on, off := true, false
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return nil, nil
	case "on":
		return &on, nil
	case "off":
		return &off, nil
	}
	return nil, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// wantProgressUI decides whether a directory build draws the progress view
// on out. Only a real stdout terminal gets it in auto mode.
func wantProgressUI(mode progressUI, out io.Writer, quiet bool) bool {
	if quiet {
		return false
	}
	if mode != nil {
		return *mode
	}
	f, ok := out.(*os.File)
	return ok && f == os.Stdout && isTerminal(f)
}

type compileOutcome struct {
	result buildpipeline.CompileResult
	err    error
}

func runCompileWithUI(ctx context.Context, out io.Writer, title string, files []string, req *buildpipeline.CompileRequest) (buildpipeline.CompileResult, error) {
	if req == nil {
		return buildpipeline.CompileResult{}, fmt.Errorf("missing compile request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		reqCopy.Files = files
		res, err := buildpipeline.Compile(ctx, &reqCopy)
		outcomeCh <- compileOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, uiErr := program.Run()
	if uiErr != nil {
		// UI упал: дочитываем события, чтобы компиляция не заблокировалась
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
