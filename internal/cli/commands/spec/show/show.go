// Package show provides the spec show command.
package show

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/output"
	"github.com/pybundle/pybundle/internal/pipeline"
)

// Runner executes the spec show command.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Options holds the options for the spec show command.
type Options struct {
	Spec    *bundlespec.App
	SpecDir string
}

// Command returns the show command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Display the parsed bundle specification",
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

// Run executes the spec show command.
func (r *Runner) Run(_ context.Context, opts Options) error {
	app := opts.Spec
	o := output.New(r.Stdout)

	o.Field("Name", app.Name)
	o.Field("Display name", app.DisplayName)
	o.Field("Entry", app.Entry)
	o.Field("Version", app.Version)
	o.Field("Identifier", app.Identifier)
	o.Field("Console", lo.Ternary(app.Console, "visible", "hidden"))
	o.Field("High resolution", lo.Ternary(app.HighResolution, "yes", "no"))

	if app.MinimumOS != "" {
		o.Field("Minimum macOS", app.MinimumOS)
	}

	o.Field("Minimum Python", lo.CoalesceOrEmpty(app.MinimumPython(), pipeline.DefaultMinimumPython))

	if app.Browser != nil {
		o.Field("Browser", app.Browser.AppName)
	}

	for _, d := range app.Data {
		o.Field("Data", d.Source+" -> "+d.Dest)
	}

	o.Field("Bundle", app.BundlePath(opts.SpecDir))

	return nil
}
