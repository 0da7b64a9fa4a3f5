// Package validate provides the spec validate command.
package validate

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/output"
)

// Runner executes the spec validate command.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Options holds the options for the spec validate command.
type Options struct {
	Spec    *bundlespec.App
	SpecDir string
}

// Command returns the validate command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the bundle specification",
		Description: `Parse the bundle spec and check it for problems that would make packaging
fail: missing entry script, malformed identifier, empty version, unresolvable
data sources. Exit 0 when the spec is valid.`,
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

	app, err := bundlespec.Load(specPath)
	if err != nil {
		return err
	}

	r := &Runner{
		Stdout: lo.CoalesceOrEmpty[io.Writer](cmd.Root().Writer, os.Stdout),
		Stderr: lo.CoalesceOrEmpty[io.Writer](cmd.Root().ErrWriter, os.Stderr),
	}

	return r.Run(ctx, Options{Spec: app, SpecDir: filepath.Dir(specPath)})
}

// Run executes the spec validate command.
func (r *Runner) Run(_ context.Context, opts Options) error {
	if err := opts.Spec.Validate(opts.SpecDir); err != nil {
		return err
	}

	output.Success(r.Stdout, "%s is valid", opts.Spec.Name)

	return nil
}
