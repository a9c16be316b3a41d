package main

import (
	"fmt"
	"io"
	"time"

	"slyc/internal/buildpipeline"
)

var timingLabels = map[buildpipeline.Stage]string{
	buildpipeline.StageLoad:     "loaded",
	buildpipeline.StageCache:    "cache",
	buildpipeline.StageCompile:  "compiled",
	buildpipeline.StageValidate: "validated",
	buildpipeline.StageEmit:     "emitted",
	buildpipeline.StageRender:   "rendered",
}

// printStageTimings prints one line per recorded stage, e.g. "compiled 3.2 ms".
func printStageTimings(out io.Writer, timings buildpipeline.Timings) (err error) {
	if out == nil {
		return nil
	}
	timings.Each(func(stage buildpipeline.Stage, d time.Duration) {
		if err == nil {
			_, err = fmt.Fprintf(out, "%s %.1f ms\n", timingLabels[stage], float64(d)/float64(time.Millisecond))
		}
	})
	return err
}
