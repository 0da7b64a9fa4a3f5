// Package clean provides the clean command: removal of build artifacts.
package clean

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

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/confirm"
	"github.com/pybundle/pybundle/internal/cli/output"
	"github.com/pybundle/pybundle/internal/venv"
)

// Runner executes the clean command.
type Runner struct {
	Prompter  *confirm.Prompter
	Stat      func(string) (fs.FileInfo, error)
	RemoveAll func(string) error
	Stdout    io.Writer
	Stderr    io.Writer
}

// Options holds the options for the clean command.
type Options struct {
	// Dir is the project directory holding the build artifacts.
	Dir         string
	Venv        bool
	SkipConfirm bool
}

// Command returns the clean command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove build artifacts (build/, dist/)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "spec",
				Aliases: []string{"s"},
				Usage:   "Path to the bundle spec file (its directory is cleaned)",
				Value:   bundlespec.DefaultFile,
			},
			&cli.BoolFlag{
				Name:  "venv",
				Usage: "Also remove the isolated environment",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	stdout := lo.CoalesceOrEmpty[io.Writer](cmd.Root().Writer, os.Stdout)
	stderr := lo.CoalesceOrEmpty[io.Writer](cmd.Root().ErrWriter, os.Stderr)

	r := &Runner{
		Prompter:  &confirm.Prompter{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr},
		Stat:      os.Stat,
		RemoveAll: os.RemoveAll,
		Stdout:    stdout,
		Stderr:    stderr,
	}

	return r.Run(ctx, Options{
		Dir:         filepath.Dir(cmd.String("spec")),
		Venv:        cmd.Bool("venv"),
		SkipConfirm: cmd.Bool("force"),
	})
}

// Run executes the clean command.
func (r *Runner) Run(_ context.Context, opts Options) error {
	candidates := []string{
		filepath.Join(opts.Dir, "build"),
		filepath.Join(opts.Dir, "dist"),
	}
	if opts.Venv {
		candidates = append(candidates, filepath.Join(opts.Dir, venv.DefaultDir))
	}

	targets := lo.Filter(candidates, func(path string, _ int) bool {
		_, err := r.Stat(path)

		return err == nil
	})

	if len(targets) == 0 {
		output.Info(r.Stdout, "Nothing to clean.")

		return nil
	}

	ok, err := r.Prompter.ConfirmDelete(strings.Join(targets, ", "), opts.SkipConfirm)
	if err != nil {
		return err
	}

	if !ok {
		output.Info(r.Stdout, "Aborted.")

		return nil
	}

	for _, target := range targets {
		if err := r.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to remove %s: %w", target, err)
		}

		output.Success(r.Stdout, "Removed %s", target)
	}

	return nil
}
