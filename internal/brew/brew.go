// Package brew wraps the Homebrew package manager for the one remediation
// attempt each precondition gate is allowed.
package brew

import (
	"context"
	"io"

	"github.com/pybundle/pybundle/internal/gate"
	"github.com/pybundle/pybundle/internal/runner"
)

// Brew installs formulae and casks.
type Brew struct {
	Runner runner.Runner
	Stdout io.Writer
	Stderr io.Writer
}

// Available reports whether the brew executable is on PATH.
func (b *Brew) Available() bool {
	_, err := b.Runner.LookPath("brew")
	return err == nil
}

// Install installs a formula, e.g. "python-tk@3.11".
func (b *Brew) Install(ctx context.Context, formula string) error {
	return b.install(ctx, "brew install "+formula, "install", formula)
}

// InstallCask installs a cask, e.g. "google-chrome".
func (b *Brew) InstallCask(ctx context.Context, cask string) error {
	return b.install(ctx, "brew install --cask "+cask, "install", "--cask", cask)
}

func (b *Brew) install(ctx context.Context, step string, args ...string) error {
	err := b.Runner.Run(ctx, runner.Cmd{
		Name:   "brew",
		Args:   args,
		Stdout: b.Stdout,
		Stderr: b.Stderr,
	})
	if err != nil {
		return &gate.InstallError{Step: step, Err: err}
	}

	return nil
}
