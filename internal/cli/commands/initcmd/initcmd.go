// Package initcmd provides the init command: interactive scaffolding of a
// bundle spec file.
package initcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"github.com/zclconf/go-cty/cty"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/output"
)

// Prompter abstracts the interactive prompts so tests can script answers.
type Prompter interface {
	Input(message, def string, validate func(string) error) (string, error)
	Confirm(message string, def bool) (bool, error)
}

// Input holds the answers a bundle spec is generated from.
type Input struct {
	Name           string
	DisplayName    string
	Entry          string
	Version        string
	Identifier     string
	Console        bool
	HighResolution bool
	MinimumOS      string
	BrowserApp     string
	BrowserCask    string
	PythonMinimum  string
}

// Runner executes the init command.
type Runner struct {
	Prompter Prompter
	Stdout   io.Writer
	Stderr   io.Writer
}

// Options holds the options for the init command.
type Options struct {
	Path  string
	Force bool
}

// Command returns the init command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Interactively scaffold a bundle spec file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "spec",
				Aliases: []string{"s"},
				Usage:   "Path of the spec file to create",
				Value:   bundlespec.DefaultFile,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing spec file",
			},
		},
		Action: action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	r := &Runner{
		Prompter: &surveyPrompter{},
		Stdout:   lo.CoalesceOrEmpty[io.Writer](cmd.Root().Writer, os.Stdout),
		Stderr:   lo.CoalesceOrEmpty[io.Writer](cmd.Root().ErrWriter, os.Stderr),
	}

	return r.Run(ctx, Options{
		Path:  cmd.String("spec"),
		Force: cmd.Bool("force"),
	})
}

// Run executes the init command.
func (r *Runner) Run(_ context.Context, opts Options) error {
	if !opts.Force {
		if _, err := os.Stat(opts.Path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.Path)
		}
	}

	in, err := r.collect()
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.Path, Render(in), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Path, err)
	}

	output.Success(r.Stdout, "Wrote %s", opts.Path)
	output.Hint(r.Stdout, "run 'pybundle spec validate' to verify it, then 'pybundle build'")

	return nil
}

func (r *Runner) collect() (Input, error) {
	var in Input

	var err error

	if in.Name, err = r.Prompter.Input("Bundle name (the output .app name):", "", notEmpty); err != nil {
		return in, err
	}

	if in.DisplayName, err = r.Prompter.Input("Display name:", in.Name, notEmpty); err != nil {
		return in, err
	}

	if in.Entry, err = r.Prompter.Input("Entry script:", "main.py", notEmpty); err != nil {
		return in, err
	}

	if in.Version, err = r.Prompter.Input("Version:", "1.0.0", notEmpty); err != nil {
		return in, err
	}

	if in.Identifier, err = r.Prompter.Input("Bundle identifier (reverse-DNS):", "", validIdentifier); err != nil {
		return in, err
	}

	if in.Console, err = r.Prompter.Confirm("Show a console window?", false); err != nil {
		return in, err
	}

	if in.HighResolution, err = r.Prompter.Confirm("Enable high-resolution (Retina) mode?", true); err != nil {
		return in, err
	}

	if in.MinimumOS, err = r.Prompter.Input("Minimum macOS version (empty for none):", "", nil); err != nil {
		return in, err
	}

	needsBrowser, err := r.Prompter.Confirm("Does the app need a browser at runtime?", false)
	if err != nil {
		return in, err
	}

	if needsBrowser {
		if in.BrowserApp, err = r.Prompter.Input("Browser application name:", "Google Chrome", notEmpty); err != nil {
			return in, err
		}

		if in.BrowserCask, err = r.Prompter.Input("Homebrew cask (empty for none):", "google-chrome", nil); err != nil {
			return in, err
		}
	}

	if in.PythonMinimum, err = r.Prompter.Input("Minimum Python version:", "3.9", notEmpty); err != nil {
		return in, err
	}

	return in, nil
}

// Render generates the bundle spec file contents for the given answers.
func Render(in Input) []byte {
	f := hclwrite.NewEmptyFile()

	app := f.Body().AppendNewBlock("app", []string{in.Name}).Body()
	app.SetAttributeValue("entry", cty.StringVal(in.Entry))
	app.SetAttributeValue("version", cty.StringVal(in.Version))
	app.SetAttributeValue("identifier", cty.StringVal(in.Identifier))

	if in.DisplayName != "" && in.DisplayName != in.Name {
		app.SetAttributeValue("display_name", cty.StringVal(in.DisplayName))
	}

	if in.Console {
		app.SetAttributeValue("console", cty.True)
	}

	if in.HighResolution {
		app.SetAttributeValue("high_resolution", cty.True)
	}

	if in.MinimumOS != "" {
		app.SetAttributeValue("minimum_os", cty.StringVal(in.MinimumOS))
	}

	if in.BrowserApp != "" {
		app.AppendNewline()

		browser := app.AppendNewBlock("browser", nil).Body()
		browser.SetAttributeValue("app_name", cty.StringVal(in.BrowserApp))

		if in.BrowserCask != "" {
			browser.SetAttributeValue("cask", cty.StringVal(in.BrowserCask))
		}
	}

	if in.PythonMinimum != "" {
		app.AppendNewline()

		python := app.AppendNewBlock("python", nil).Body()
		python.SetAttributeValue("minimum", cty.StringVal(in.PythonMinimum))
	}

	return f.Bytes()
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("a value is required")
	}

	return nil
}

func validIdentifier(s string) error {
	if !bundlespec.ValidIdentifier(s) {
		return fmt.Errorf("%q is not a reverse-DNS identifier like com.example.app", s)
	}

	return nil
}

// surveyPrompter asks on the terminal.
type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, validate func(string) error) (string, error) {
	var out string

	prompt := &survey.Input{Message: message, Default: def}

	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)

			return validate(s)
		}))
	}

	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", err
	}

	return out, nil
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool

	prompt := &survey.Confirm{Message: message, Default: def}
	if err := survey.AskOne(prompt, &out); err != nil {
		return false, err
	}

	return out, nil
}
