// Package probe implements the environment precondition checks of the build
// pipeline: interpreter, GUI toolkit binding, browser bundle and packaging
// tool. Probes only detect; installation attempts are the pipeline's job.
package probe

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/pybundle/pybundle/internal/gate"
	"github.com/pybundle/pybundle/internal/pyver"
	"github.com/pybundle/pybundle/internal/runner"
)

// DefaultInterpreter is the interpreter probed when the spec names none.
const DefaultInterpreter = "python3"

// DefaultApplicationsDir is where macOS application bundles live.
const DefaultApplicationsDir = "/Applications"

const versionSnippet = `import sys; print("%d.%d.%d" % sys.version_info[:3])`

// Interpreter is a located Python interpreter.
type Interpreter struct {
	Path    string
	Version pyver.Version
}

// InterpreterProbe locates the Python interpreter and checks its version.
type InterpreterProbe struct {
	Runner  runner.Runner
	Name    string // defaults to DefaultInterpreter
	Minimum pyver.Version
}

// Probe returns the located interpreter, or a MissingInterpreterError when it
// is absent or older than the minimum.
func (p *InterpreterProbe) Probe(ctx context.Context) (*Interpreter, error) {
	name := lo.CoalesceOrEmpty(p.Name, DefaultInterpreter)

	path, err := p.Runner.LookPath(name)
	if err != nil {
		return nil, &gate.MissingInterpreterError{Name: name, Minimum: p.Minimum}
	}

	out, err := p.Runner.Output(ctx, runner.Cmd{
		Name: path,
		Args: []string{"-c", versionSnippet},
	})
	if err != nil {
		return nil, &gate.MissingInterpreterError{Name: name, Minimum: p.Minimum}
	}

	version, err := pyver.Parse(strings.TrimSpace(out))
	if err != nil {
		return nil, &gate.MissingInterpreterError{Name: name, Minimum: p.Minimum}
	}

	if !version.AtLeast(p.Minimum) {
		return nil, &gate.MissingInterpreterError{Name: name, Minimum: p.Minimum, Found: version}
	}

	return &Interpreter{Path: path, Version: version}, nil
}

// ToolkitProbe checks that the tkinter binding is importable.
type ToolkitProbe struct {
	Runner runner.Runner
	Stderr io.Writer
}

// Probe imports tkinter with the given interpreter. A failed import yields a
// MissingToolkitError carrying the interpreter version for remediation text.
func (p *ToolkitProbe) Probe(ctx context.Context, py *Interpreter) error {
	err := p.Runner.Run(ctx, runner.Cmd{
		Name:   py.Path,
		Args:   []string{"-c", "import tkinter"},
		Stderr: p.Stderr,
	})
	if err != nil {
		return &gate.MissingToolkitError{PythonVersion: py.Version}
	}

	return nil
}

// BrowserProbe checks for the presence of a browser application bundle.
type BrowserProbe struct {
	Stat            func(string) (fs.FileInfo, error)
	ApplicationsDir string // defaults to DefaultApplicationsDir
}

// BundlePath returns the expected bundle path for an application name.
func (p *BrowserProbe) BundlePath(appName string) string {
	dir := lo.CoalesceOrEmpty(p.ApplicationsDir, DefaultApplicationsDir)
	return filepath.Join(dir, appName+".app")
}

// Probe checks that the named application bundle exists.
func (p *BrowserProbe) Probe(appName, cask string) error {
	fi, err := p.Stat(p.BundlePath(appName))
	if err != nil || !fi.IsDir() {
		return &gate.MissingBrowserError{AppName: appName, Cask: cask}
	}

	return nil
}

// PackagerProbe checks that the packaging tool is importable by the given
// interpreter, typically the one inside the isolated environment.
type PackagerProbe struct {
	Runner runner.Runner
}

// Probe returns the installed PyInstaller version, or an error when the tool
// is absent.
func (p *PackagerProbe) Probe(ctx context.Context, python string) (string, error) {
	out, err := p.Runner.Output(ctx, runner.Cmd{
		Name: python,
		Args: []string{"-m", "PyInstaller", "--version"},
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}
