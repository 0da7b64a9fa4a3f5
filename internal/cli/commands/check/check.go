// Package check provides the check command: environment diagnostics without
// any installation attempt.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/output"
	"github.com/pybundle/pybundle/internal/pipeline"
	"github.com/pybundle/pybundle/internal/probe"
	"github.com/pybundle/pybundle/internal/pyver"
	"github.com/pybundle/pybundle/internal/runner"
	"github.com/pybundle/pybundle/internal/venv"
)

// Runner executes the check command.
type Runner struct {
	Runner runner.Runner
	Getenv func(string) string
	Stat   func(string) (fs.FileInfo, error)
	// ApplicationsDir overrides where browser bundles are probed for.
	ApplicationsDir string
	Stdout          io.Writer
	Stderr          io.Writer
}

// Options holds the options for the check command.
type Options struct {
	// Spec is the loaded bundle spec, or nil when no spec file exists. Without
	// a spec the browser probe is skipped and the default interpreter minimum
	// applies.
	Spec    *bundlespec.App
	SpecDir string
}

// result is the outcome of one probe, in display order.
type result struct {
	name   string
	detail string
	err    error
}

// Command returns the check command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Probe the build environment without installing anything",
		Description: `Run every environment probe the build pipeline relies on (Python
interpreter, tkinter toolkit, required browser, packaging tool) and report
each as a pass/fail line. Nothing is installed or modified.

EXAMPLES:
  pybundle check                    Check against ./Bundle.hcl (if present)
  pybundle check -s app/Bundle.hcl  Check against a specific spec`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "spec",
				Aliases: []string{"s"},
				Usage:   "Path to the bundle spec file",
				Value:   bundlespec.DefaultFile,
			},
		},
		Action: action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	specPath := cmd.String("spec")
	specDir := filepath.Dir(specPath)

	var app *bundlespec.App

	if _, err := os.Stat(specPath); err == nil {
		app, err = bundlespec.Load(specPath)
		if err != nil {
			return err
		}
	}

	r := &Runner{
		Runner: runner.ExecRunner{},
		Getenv: os.Getenv,
		Stat:   os.Stat,
		Stdout: lo.CoalesceOrEmpty[io.Writer](cmd.Root().Writer, os.Stdout),
		Stderr: lo.CoalesceOrEmpty[io.Writer](cmd.Root().ErrWriter, os.Stderr),
	}

	return r.Run(ctx, Options{Spec: app, SpecDir: specDir})
}

// Run executes the check command.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	minimum := pipeline.DefaultMinimumPython
	if opts.Spec != nil {
		minimum = lo.CoalesceOrEmpty(opts.Spec.MinimumPython(), pipeline.DefaultMinimumPython)
	}

	minVer, err := pyver.Parse(minimum)
	if err != nil {
		return fmt.Errorf("invalid minimum python version %q: %w", minimum, err)
	}

	// The interpreter result feeds the toolkit and packager probes, so it runs
	// first; the remaining probes are independent and fan out.
	py, ipErr := (&probe.InterpreterProbe{Runner: r.Runner, Minimum: minVer}).Probe(ctx)

	interpreter := result{name: "interpreter", err: ipErr}
	if ipErr == nil {
		interpreter.detail = fmt.Sprintf("Python %s (%s)", py.Version, py.Path)
	}

	toolkit := result{name: "toolkit"}
	browser := result{name: "browser"}
	packager := result{name: "packager"}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if py == nil {
			toolkit.err = errors.New("needs a working interpreter")

			return nil
		}

		if err := (&probe.ToolkitProbe{Runner: r.Runner, Stderr: io.Discard}).Probe(gctx, py); err != nil {
			toolkit.err = err

			return nil
		}
		toolkit.detail = "tkinter importable"

		return nil
	})

	g.Go(func() error {
		if opts.Spec == nil || opts.Spec.Browser == nil {
			// No requirement declared; reported as "not required".
			return nil
		}

		bp := &probe.BrowserProbe{Stat: r.Stat, ApplicationsDir: r.ApplicationsDir}
		if err := bp.Probe(opts.Spec.Browser.AppName, opts.Spec.Browser.Cask); err != nil {
			browser.err = err

			return nil
		}
		browser.detail = bp.BundlePath(opts.Spec.Browser.AppName)

		return nil
	})

	g.Go(func() error {
		python := r.packagerPython(py, opts.SpecDir)
		if python == "" {
			packager.err = errors.New("needs a working interpreter")

			return nil
		}

		version, err := (&probe.PackagerProbe{Runner: r.Runner}).Probe(gctx, python)
		if err != nil {
			packager.err = errors.New("PyInstaller is not installed (pybundle build installs it)")

			return nil
		}
		packager.detail = "PyInstaller " + version

		return nil
	})

	_ = g.Wait()

	failed := 0

	for _, res := range []result{interpreter, toolkit, browser, packager} {
		switch {
		case res.err != nil:
			failed++

			output.Failed(r.Stdout, res.name, res.err)
		case res.detail == "":
			output.Info(r.Stdout, "- %s: not required", res.name)
		default:
			output.Success(r.Stdout, "%s: %s", res.name, res.detail)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of 4 environment probes failed", failed)
	}

	return nil
}

// packagerPython picks the interpreter to probe the packaging tool with: the
// active environment, then a local .venv, then the system interpreter.
func (r *Runner) packagerPython(py *probe.Interpreter, specDir string) string {
	if env, ok := venv.Active(r.Getenv, r.Stat); ok {
		return env.Python()
	}

	local := &venv.Env{Dir: filepath.Join(specDir, venv.DefaultDir)}
	if fi, err := r.Stat(local.Dir); err == nil && fi.IsDir() {
		return local.Python()
	}

	if py != nil {
		return py.Path
	}

	return ""
}
