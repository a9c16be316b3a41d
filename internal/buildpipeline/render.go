package buildpipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"slyc/internal/render"
)

// RenderRequest compiles one template and renders it with data.
type RenderRequest struct {
	CompileRequest
	DataPath string      // YAML or JSON file; ignored when Data is set
	Data     *render.Map // nil and no DataPath means empty data
	Out      io.Writer
}

// RenderResult captures compilation artefacts and stage timings of a render.
type RenderResult struct {
	CompileResult
}

// Render compiles req.TargetPath and executes it into req.Out.
func Render(ctx context.Context, req *RenderRequest) (RenderResult, error) {
	var result RenderResult
	if req == nil {
		return result, fmt.Errorf("missing render request")
	}
	if req.Out == nil {
		return result, fmt.Errorf("missing render output")
	}

	compiled, err := Compile(ctx, &req.CompileRequest)
	result.CompileResult = compiled
	if err != nil {
		return result, err
	}
	if len(compiled.Results) != 1 || compiled.Results[0].Program == nil {
		return result, fmt.Errorf("render needs exactly one template, got %d", len(compiled.Results))
	}

	data := req.Data
	if data == nil && req.DataPath != "" {
		loadStart := time.Now()
		if data, err = render.LoadData(req.DataPath); err != nil {
			return result, fmt.Errorf("load data: %w", err)
		}
		result.Timings.Add(StageLoad, time.Since(loadStart))
	}
	if data == nil {
		data = render.NewMap()
	}

	emitStage(req.Progress, nil, StageRender, StatusWorking, nil, 0)
	renderStart := time.Now()
	err = render.Exec(req.Out, compiled.Results[0].Program, data)
	elapsed := time.Since(renderStart)
	result.Timings.Set(StageRender, elapsed)
	if err != nil {
		emitStage(req.Progress, nil, StageRender, StatusError, err, elapsed)
		return result, fmt.Errorf("render %s: %w", req.TargetPath, err)
	}
	emitStage(req.Progress, nil, StageRender, StatusDone, nil, elapsed)
	return result, nil
}
