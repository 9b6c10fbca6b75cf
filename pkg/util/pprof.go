package util

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
)

// RunCPUProfile runs fn while writing a CPU profile to filename. An empty
// filename just runs fn.
func RunCPUProfile(filename string, fn func() error) (err error) {
	if filename == "" {
		return fn()
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create cpu profile: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err = pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("start cpu profile: %w", err)
	}
	defer pprof.StopCPUProfile()
	return fn()
}
