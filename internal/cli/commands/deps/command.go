// Package deps provides the deps command group for dependency inspection.
package deps

import (
	"github.com/urfave/cli/v3"

	cliinternal "github.com/pybundle/pybundle/internal/cli/commands/internal"
	"github.com/pybundle/pybundle/internal/cli/commands/deps/diff"
)

// Command returns the deps command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "deps",
		Usage: "Inspect the dependency manifest against the isolated environment",
		Commands: []*cli.Command{
			diff.Command(),
		},
		CommandNotFound: cliinternal.CommandNotFound,
	}
}
