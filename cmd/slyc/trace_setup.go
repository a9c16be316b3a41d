package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"slyc/internal/trace"
)

// panicRing keeps recent events for dumpTraceOnPanic when a ring is configured.
var panicRing *trace.Ring

// setupTracing inspects trace-related flags and initializes the tracer.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()
	flags := &flagReader{set: root.PersistentFlags()}
	traceOutput := flags.str("trace")
	levelStr := flags.str("trace-level")
	modeStr := flags.str("trace-mode")
	formatStr := flags.str("trace-format")
	ringSize := flags.integer("trace-ring-size")
	heartbeatInterval := flags.duration("trace-heartbeat")
	if flags.err != nil {
		return nil, flags.err
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	panicRing = trace.FindRing(tracer)

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)

	stopHeartbeat := trace.StartHeartbeat(ctx, tracer, heartbeatInterval, func() string {
		return fmt.Sprintf("goroutines=%d", runtime.NumGoroutine())
	})

	cleanup := func() {
		stopHeartbeat()
		if ring, ok := tracer.(*trace.Ring); ok && mode == trace.ModeRing {
			// ring без stream: сбрасываем накопленное при выходе
			if err := ring.Dump(cmd.ErrOrStderr(), format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
		panicRing = nil
	}
	return cleanup, nil
}

// dumpTraceOnPanic writes the ring buffer to stderr and re-panics.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if panicRing != nil {
		fmt.Fprintln(os.Stderr, "== trace before panic ==")
		_ = panicRing.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
