// Package buildpipeline orchestrates compilation, emission and rendering.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"slyc/internal/directive"
	"slyc/internal/driver"
	"slyc/internal/observ"
	"slyc/internal/source"
)

// ErrDiagnostics is returned when compilation reported errors and the request
// does not allow them.
var ErrDiagnostics = errors.New("diagnostics reported errors")

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	TargetPath            string // template file or directory
	BaseDir               string // progress names are relative to it
	MaxDiagnostics        int
	Jobs                  int
	Registry              *directive.Registry
	Cache                 *driver.DiskCache
	EnableTimings         bool
	AllowDiagnosticsError bool
	WarningsAsErrors      bool
	Progress              ProgressSink
	Files                 []string
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	FileSet *source.FileSet
	Results []driver.Result
	Timings Timings
}

// HasErrors reports whether any template has error diagnostics.
func (r *CompileResult) HasErrors() bool {
	for i := range r.Results {
		if r.Results[i].Bag != nil && r.Results[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any template has warning diagnostics.
func (r *CompileResult) HasWarnings() bool {
	for i := range r.Results {
		if r.Results[i].Bag != nil && r.Results[i].Bag.HasWarnings() {
			return true
		}
	}
	return false
}

// Compile compiles a template file or every template of a directory.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.TargetPath == "" {
		return result, fmt.Errorf("missing target path")
	}

	loadStart := time.Now()
	st, err := os.Stat(req.TargetPath)
	if err != nil {
		emitStage(req.Progress, req.Files, StageLoad, StatusError, err, 0)
		return result, err
	}
	files := req.Files
	if req.Progress != nil && len(files) == 0 {
		if files, err = ProgressFiles(req.TargetPath, req.BaseDir, st.IsDir()); err != nil {
			emitStage(req.Progress, nil, StageLoad, StatusError, err, 0)
			return result, err
		}
	}
	result.Timings.Set(StageLoad, time.Since(loadStart))
	emitQueued(req.Progress, files)

	progress := &fileProgress{sink: req.Progress, namer: newNamer(req.BaseDir)}
	opts := driver.Options{
		MaxDiagnostics: req.MaxDiagnostics,
		Jobs:           req.Jobs,
		Registry:       req.Registry,
		Cache:          req.Cache,
		EnableTimings:  req.EnableTimings,
		OnFileStart:    progress.start,
		OnFile:         progress.done,
	}

	emitStage(req.Progress, nil, StageCompile, StatusWorking, nil, 0)
	compileStart := time.Now()
	if st.IsDir() {
		result.FileSet, result.Results, err = driver.CompileDir(ctx, req.TargetPath, opts)
	} else {
		progress.start(0, req.TargetPath)
		var res *driver.Result
		result.FileSet, res, err = driver.CompileFile(ctx, req.TargetPath, opts)
		if res != nil {
			result.Results = []driver.Result{*res}
			progress.done(0, res)
		}
	}
	elapsed := time.Since(compileStart)
	result.Timings.Set(StageCompile, elapsed)
	recordPhaseTimings(&result)
	if err != nil {
		emitStage(req.Progress, nil, StageCompile, StatusError, err, elapsed)
		return result, err
	}

	failed := result.HasErrors() || (req.WarningsAsErrors && result.HasWarnings())
	if failed && !req.AllowDiagnosticsError {
		emitStage(req.Progress, nil, StageCompile, StatusError, ErrDiagnostics, elapsed)
		return result, ErrDiagnostics
	}
	emitStage(req.Progress, nil, StageCompile, StatusDone, nil, elapsed)
	return result, nil
}

// fileProgress turns driver callbacks into per-file events.
type fileProgress struct {
	sink  ProgressSink
	namer namer
}

func (p *fileProgress) start(_ int, path string) {
	if p.sink == nil {
		return
	}
	p.sink.OnEvent(Event{File: p.namer.name(path), Stage: StageCompile, Status: StatusWorking})
}

func (p *fileProgress) done(_ int, res *driver.Result) {
	if p.sink == nil || res == nil {
		return
	}
	ev := Event{File: p.namer.name(res.Path), Stage: StageCompile, Status: StatusDone}
	if res.Program == nil || (res.Bag != nil && res.Bag.HasErrors()) {
		ev.Status = StatusError
		ev.Err = ErrDiagnostics
	}
	if res.Timing != nil {
		ev.Elapsed = durationFromMillis(res.Timing.TotalMS)
	}
	p.sink.OnEvent(ev)
}

// recordPhaseTimings sums per-template phases. Under CompileDir these overlap
// in wall time.
func recordPhaseTimings(result *CompileResult) {
	if result == nil {
		return
	}
	reports := make([]observ.Report, 0, len(result.Results))
	for i := range result.Results {
		if r := result.Results[i].Timing; r != nil {
			reports = append(reports, *r)
		}
	}
	if len(reports) == 0 {
		return
	}
	merged := observ.Merge(reports...)
	for stage, phase := range map[Stage]string{StageCache: "cache", StageValidate: "validate"} {
		if _, ok := merged.Phase(phase); ok {
			result.Timings.Add(stage, merged.Duration(phase))
		}
	}
}

func durationFromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
