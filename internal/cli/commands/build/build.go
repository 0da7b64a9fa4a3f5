// Package build provides the build command: the full provision-and-package
// pipeline.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/pybundle/pybundle/internal/brew"
	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/output"
	"github.com/pybundle/pybundle/internal/gate"
	"github.com/pybundle/pybundle/internal/manifest"
	"github.com/pybundle/pybundle/internal/pipeline"
	"github.com/pybundle/pybundle/internal/report"
	"github.com/pybundle/pybundle/internal/runner"
)

// Builder runs the whole build and reports its result.
type Builder interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Runner executes the build command.
type Runner struct {
	Pipeline Builder
	Spec     *bundlespec.App
	Stdout   io.Writer
	Stderr   io.Writer
}

// Options holds the options for the build command.
type Options struct {
	ReportPath string
}

// Command returns the build command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Provision the environment and package the app bundle",
		Description: `Run the full build pipeline: verify the Python interpreter, the tkinter
toolkit and the required browser, provision an isolated environment, install
the declared dependencies, and package the application into dist/<Name>.app.

Each precondition gets at most one automatic installation attempt (Homebrew);
any remaining failure aborts the build with remediation instructions.

EXAMPLES:
  pybundle build                        Build using ./Bundle.hcl
  pybundle build -s app/Bundle.hcl      Build a spec in another directory
  pybundle build --skip-browser         Skip the browser presence gate
  pybundle build --report build.yaml    Also write a YAML build report`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "spec",
				Aliases: []string{"s"},
				Usage:   "Path to the bundle spec file",
				Value:   bundlespec.DefaultFile,
			},
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Path to the dependency manifest (defaults to requirements.txt next to the spec)",
			},
			&cli.BoolFlag{
				Name:  "skip-browser",
				Usage: "Skip the browser presence gate",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a YAML build report to the given file",
			},
		},
		Action: action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	// Optional; subprocesses inherit whatever the file declares.
	_ = godotenv.Load()

	specPath := cmd.String("spec")

	app, err := bundlespec.Load(specPath)
	if err != nil {
		return err
	}

	specDir := filepath.Dir(specPath)
	if err := app.Validate(specDir); err != nil {
		return err
	}

	manifestPath := cmd.String("manifest")
	if manifestPath == "" {
		candidate := filepath.Join(specDir, manifest.DefaultFile)
		if _, err := os.Stat(candidate); err == nil {
			manifestPath = candidate
		}
	}

	execRunner := runner.ExecRunner{}
	stdout := lo.CoalesceOrEmpty[io.Writer](cmd.Root().Writer, os.Stdout)
	stderr := lo.CoalesceOrEmpty[io.Writer](cmd.Root().ErrWriter, os.Stderr)

	r := &Runner{
		Pipeline: &pipeline.Pipeline{
			Spec:        app,
			SpecDir:     specDir,
			Manifest:    manifestPath,
			SkipBrowser: cmd.Bool("skip-browser"),
			Runner:      execRunner,
			Brew:        &brew.Brew{Runner: execRunner, Stdout: stdout, Stderr: stderr},
			Getenv:      os.Getenv,
			Stat:        os.Stat,
			Stdout:      stdout,
			Stderr:      stderr,
		},
		Spec:   app,
		Stdout: stdout,
		Stderr: stderr,
	}

	return r.Run(ctx, Options{ReportPath: cmd.String("report")})
}

// Run executes the build command.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	res, runErr := r.Pipeline.Run(ctx)

	if opts.ReportPath != "" && res != nil {
		rep := report.FromResult(r.Spec, res)
		if err := rep.Write(opts.ReportPath); err != nil {
			output.Warning(r.Stderr, "failed to write build report: %v", err)
		}
	}

	if runErr != nil {
		var rem gate.Remediator
		if errors.As(runErr, &rem) {
			_, _ = fmt.Fprintln(r.Stderr)
			_, _ = fmt.Fprint(r.Stderr, rem.Remediation())
			_, _ = fmt.Fprintln(r.Stderr)
		}
		output.Hint(r.Stderr, "run 'pybundle check' to diagnose the environment")

		return runErr
	}

	output.Success(r.Stdout, "Built %s", res.BundlePath)
	output.Hint(r.Stdout, "double-click it in Finder, or run: open %s", res.BundlePath)

	return nil
}
