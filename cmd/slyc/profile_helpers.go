package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slyc/internal/prof"
)

// setupProfiling reads the persistent profiling flags and starts a session.
// The returned cleanup is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := &flagReader{set: cmd.Root().PersistentFlags()}
	opts := prof.Options{
		CPUPath:   flags.str("cpu-profile"),
		MemPath:   flags.str("mem-profile"),
		TracePath: flags.str("runtime-trace"),
	}
	if flags.err != nil {
		return nil, flags.err
	}
	if !opts.Enabled() {
		return func() {}, nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	errOut := cmd.ErrOrStderr()
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(errOut, "failed to write profiles: %v\n", err)
		}
	}, nil
}
