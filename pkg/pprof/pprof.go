// Package pprof wires the CLI's --pprof-file flag to Go's runtime
// profiler, file-mode only: the host tooling profiles itself, never the
// JS heap it manages (that is covered separately by the diagnostics
// snapshot exporter).
package pprof

import (
	"os"
	"runtime/pprof"

	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
)

// Session owns the open profile file for the lifetime of a CLI
// invocation.
type Session struct {
	file *os.File
}

// Start begins CPU profiling to path. A zero-value path disables
// profiling and Start returns (nil, nil).
func Start(path string) (*Session, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeIO, "creating pprof output file "+path)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "starting cpu profile")
	}
	return &Session{file: f}, nil
}

// Stop finalizes profiling and closes the output file. It is safe to
// call on a nil Session.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	pprof.StopCPUProfile()
	if err := s.file.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeIO, "closing pprof output file")
	}
	return nil
}
