// Package spec provides the spec command group for inspecting bundle specs.
package spec

import (
	"github.com/urfave/cli/v3"

	cliinternal "github.com/pybundle/pybundle/internal/cli/commands/internal"
	"github.com/pybundle/pybundle/internal/cli/commands/spec/show"
	"github.com/pybundle/pybundle/internal/cli/commands/spec/validate"
)

// Command returns the spec command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "spec",
		Usage: "Inspect the bundle specification",
		Commands: []*cli.Command{
			show.Command(),
			validate.Command(),
		},
		CommandNotFound: cliinternal.CommandNotFound,
	}
}
