// Package venv manages the isolated dependency environment the build installs
// into.
//
// An already-active environment (the VIRTUAL_ENV marker) is reused as-is.
// Otherwise a local .venv directory is created on demand. pybundle never
// "activates" an environment; it addresses the environment's own interpreter
// by path instead.
package venv

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"

	"github.com/pybundle/pybundle/internal/gate"
	"github.com/pybundle/pybundle/internal/runner"
)

// DefaultDir is the environment directory created next to the bundle spec.
const DefaultDir = ".venv"

// Env is an isolated dependency environment on disk.
type Env struct {
	Dir string
}

// Python returns the path of the environment's interpreter.
func (e *Env) Python() string {
	return e.Bin(lo.Ternary(runtime.GOOS == "windows", "python.exe", "python"))
}

// Bin returns the path of an executable installed into the environment.
func (e *Env) Bin(name string) string {
	binDir := lo.Ternary(runtime.GOOS == "windows", "Scripts", "bin")
	return filepath.Join(e.Dir, binDir, name)
}

// Active returns the environment indicated by the VIRTUAL_ENV marker, if the
// marker is set and points at an existing directory.
func Active(getenv func(string) string, stat func(string) (fs.FileInfo, error)) (*Env, bool) {
	dir := getenv("VIRTUAL_ENV")
	if dir == "" {
		return nil, false
	}

	fi, err := stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, false
	}

	return &Env{Dir: dir}, true
}

// Ensure returns the environment at dir, creating it with the given base
// interpreter when missing. The second result reports whether a new
// environment was created.
func Ensure(
	ctx context.Context,
	r runner.Runner,
	stat func(string) (fs.FileInfo, error),
	python, dir string,
	stderr io.Writer,
) (*Env, bool, error) {
	if fi, err := stat(dir); err == nil {
		if !fi.IsDir() {
			return nil, false, fmt.Errorf("%s exists but is not a directory", dir)
		}

		return &Env{Dir: dir}, false, nil
	}

	err := r.Run(ctx, runner.Cmd{
		Name:   python,
		Args:   []string{"-m", "venv", dir},
		Stderr: stderr,
	})
	if err != nil {
		return nil, false, &gate.InstallError{Step: "venv creation", Err: err}
	}

	return &Env{Dir: dir}, true, nil
}
