// Package pip drives the package installer inside the isolated environment.
package pip

import (
	"context"
	"io"

	"github.com/pybundle/pybundle/internal/gate"
	"github.com/pybundle/pybundle/internal/runner"
)

// Installer runs pip through a specific interpreter, so installs always land
// in that interpreter's environment.
type Installer struct {
	Python string
	Runner runner.Runner
	Stdout io.Writer
	Stderr io.Writer
	Quiet  bool
}

// UpgradePip upgrades pip itself.
func (i *Installer) UpgradePip(ctx context.Context) error {
	return i.run(ctx, "pip upgrade", "install", "--upgrade", "pip")
}

// Install installs the given packages.
func (i *Installer) Install(ctx context.Context, pkgs ...string) error {
	return i.run(ctx, "pip install", append([]string{"install"}, pkgs...)...)
}

// InstallRequirements installs the declared dependency manifest.
func (i *Installer) InstallRequirements(ctx context.Context, path string) error {
	return i.run(ctx, "pip install -r "+path, "install", "-r", path)
}

// Freeze returns the installed packages as pip freeze output.
func (i *Installer) Freeze(ctx context.Context) (string, error) {
	out, err := i.Runner.Output(ctx, runner.Cmd{
		Name:   i.Python,
		Args:   []string{"-m", "pip", "freeze"},
		Stderr: i.Stderr,
	})
	if err != nil {
		return "", &gate.InstallError{Step: "pip freeze", Err: err}
	}

	return out, nil
}

func (i *Installer) run(ctx context.Context, step string, args ...string) error {
	full := append([]string{"-m", "pip"}, args...)
	if i.Quiet {
		full = append(full, "--quiet")
	}

	err := i.Runner.Run(ctx, runner.Cmd{
		Name:   i.Python,
		Args:   full,
		Stdout: i.Stdout,
		Stderr: i.Stderr,
	})
	if err != nil {
		return &gate.InstallError{Step: step, Err: err}
	}

	return nil
}
