// Package commands provides the command-line interface for pybundle.
package commands

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/pybundle/pybundle/internal/cli/commands/build"
	"github.com/pybundle/pybundle/internal/cli/commands/check"
	"github.com/pybundle/pybundle/internal/cli/commands/clean"
	"github.com/pybundle/pybundle/internal/cli/commands/deps"
	"github.com/pybundle/pybundle/internal/cli/commands/initcmd"
	"github.com/pybundle/pybundle/internal/cli/commands/spec"
)

// MakeApp creates a new CLI application instance.
func MakeApp() *cli.Command {
	return &cli.Command{
		Name:    "pybundle",
		Usage:   "Provision and package a Python desktop app into a macOS .app bundle",
		Version: "0.1.0",
		Commands: []*cli.Command{
			build.Command(),
			check.Command(),
			spec.Command(),
			deps.Command(),
			initcmd.Command(),
			clean.Command(),
		},
		CommandNotFound: func(_ context.Context, cmd *cli.Command, command string) {
			_ = cli.ShowAppHelp(cmd)
			w := lo.CoalesceOrEmpty(cmd.Root().ErrWriter, cmd.Root().Writer)
			_, _ = fmt.Fprintf(w, "\nCommand not found: %s\n", command)
		},
	}
}

// App is the main CLI application.
var App = MakeApp()
