// Package diff provides the deps diff command.
package diff

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/pybundle/pybundle/internal/cli/output"
	"github.com/pybundle/pybundle/internal/manifest"
	"github.com/pybundle/pybundle/internal/pip"
	"github.com/pybundle/pybundle/internal/runner"
	"github.com/pybundle/pybundle/internal/venv"
)

// Runner executes the deps diff command.
type Runner struct {
	Runner runner.Runner
	Getenv func(string) string
	Stat   func(string) (fs.FileInfo, error)
	Stdout io.Writer
	Stderr io.Writer
}

// Options holds the options for the deps diff command.
type Options struct {
	ManifestPath string
	// Dir is where the isolated environment is looked up when no environment
	// is active.
	Dir string
}

// Command returns the diff command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "Diff the declared manifest against the frozen environment",
		Description: `Compare the dependency manifest with what is actually installed in the
isolated environment (pip freeze), as a unified diff. Only packages declared
in the manifest are compared; transitive installs are ignored.

EXAMPLES:
  pybundle deps diff                       Compare ./requirements.txt
  pybundle deps diff -m app/requirements.txt`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Path to the dependency manifest",
				Value:   manifest.DefaultFile,
			},
		},
		Action: action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	manifestPath := cmd.String("manifest")

	r := &Runner{
		Runner: runner.ExecRunner{},
		Getenv: os.Getenv,
		Stat:   os.Stat,
		Stdout: lo.CoalesceOrEmpty[io.Writer](cmd.Root().Writer, os.Stdout),
		Stderr: lo.CoalesceOrEmpty[io.Writer](cmd.Root().ErrWriter, os.Stderr),
	}

	return r.Run(ctx, Options{
		ManifestPath: manifestPath,
		Dir:          filepath.Dir(manifestPath),
	})
}

// Run executes the deps diff command.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	declared, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}

	env, ok := venv.Active(r.Getenv, r.Stat)
	if !ok {
		local := filepath.Join(opts.Dir, venv.DefaultDir)
		if fi, statErr := r.Stat(local); statErr != nil || !fi.IsDir() {
			return fmt.Errorf("no isolated environment found; run 'pybundle build' first")
		}

		env = &venv.Env{Dir: local}
	}

	installer := &pip.Installer{Python: env.Python(), Runner: r.Runner, Stderr: r.Stderr}

	frozenOut, err := installer.Freeze(ctx)
	if err != nil {
		return err
	}

	frozen, err := manifest.Parse(strings.NewReader(frozenOut))
	if err != nil {
		return err
	}

	want := manifest.Canonical(declared)
	got := manifest.Canonical(onlyDeclared(frozen, declared))

	if want == got {
		output.Success(r.Stdout, "%s and the environment are in sync", opts.ManifestPath)

		return nil
	}

	_, _ = fmt.Fprint(r.Stdout, output.Diff(opts.ManifestPath, "pip freeze", want, got))

	return nil
}

// onlyDeclared filters frozen requirements down to the names the manifest
// declares, so transitive installs do not drown the comparison.
func onlyDeclared(frozen, declared []manifest.Requirement) []manifest.Requirement {
	names := make(map[string]struct{}, len(declared))
	for _, d := range declared {
		names[d.Name] = struct{}{}
	}

	return lo.Filter(frozen, func(f manifest.Requirement, _ int) bool {
		_, ok := names[f.Name]

		return ok
	})
}
