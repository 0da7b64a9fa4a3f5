// Package runner abstracts external command execution so that command-line
// side effects can be faked in tests.
package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes a single external command invocation.
type Cmd struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string // appended to the inherited environment
	Stdout io.Writer
	Stderr io.Writer
}

// String returns the command line for diagnostics.
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes external commands.
type Runner interface {
	// Run executes the command, streaming output to Cmd.Stdout/Stderr.
	Run(ctx context.Context, cmd Cmd) error

	// Output executes the command and returns its captured stdout.
	// Cmd.Stderr is honored if set.
	Output(ctx context.Context, cmd Cmd) (string, error)

	// LookPath searches PATH for an executable.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Cmd) error {
	return c.build(ctx).Run()
}

func (ExecRunner) Output(ctx context.Context, c Cmd) (string, error) {
	ec := c.build(ctx)
	ec.Stdout = nil

	out, err := ec.Output()
	return string(out), err
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (c Cmd) build(ctx context.Context) *exec.Cmd {
	ec := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec // Command names come from probes and the bundle spec, not the network
	ec.Dir = c.Dir
	ec.Stdout = c.Stdout
	ec.Stderr = c.Stderr

	if len(c.Env) > 0 {
		ec.Env = append(os.Environ(), c.Env...)
	}

	return ec
}
