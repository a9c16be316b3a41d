package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// flagReader reads several flags and keeps the first lookup error, so a
// block of reads needs one check at the end.
type flagReader struct {
	set *pflag.FlagSet
	err error
}

func (r *flagReader) fail(name string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("failed to get %s flag: %w", name, err)
	}
}

func (r *flagReader) str(name string) string {
	v, err := r.set.GetString(name)
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *flagReader) integer(name string) int {
	v, err := r.set.GetInt(name)
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *flagReader) boolean(name string) bool {
	v, err := r.set.GetBool(name)
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *flagReader) duration(name string) time.Duration {
	v, err := r.set.GetDuration(name)
	if err != nil {
		r.fail(name, err)
	}
	return v
}
