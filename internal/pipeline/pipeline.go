// Package pipeline sequences the provisioning-and-packaging gates of a build.
//
// The pipeline is strictly sequential: each gate blocks until complete, the
// first unrecoverable failure aborts the run, and each precondition gets at
// most one remediation attempt.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/pybundle/pybundle/internal/brew"
	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/output"
	"github.com/pybundle/pybundle/internal/gate"
	"github.com/pybundle/pybundle/internal/packager"
	"github.com/pybundle/pybundle/internal/pip"
	"github.com/pybundle/pybundle/internal/probe"
	"github.com/pybundle/pybundle/internal/pyver"
	"github.com/pybundle/pybundle/internal/runner"
	"github.com/pybundle/pybundle/internal/venv"
)

// DefaultMinimumPython applies when the spec declares no python block.
const DefaultMinimumPython = "3.9"

// Status is the outcome of a single gate.
type Status string

const (
	// StatusPassed means the precondition held on the first probe.
	StatusPassed Status = "passed"
	// StatusFixed means the precondition held after the one permitted
	// remediation attempt.
	StatusFixed Status = "fixed"
	// StatusSkipped means the gate did not apply to this build.
	StatusSkipped Status = "skipped"
	// StatusFailed means the gate failed terminally.
	StatusFailed Status = "failed"
)

// GateResult records the outcome of one gate.
type GateResult struct {
	Gate     string
	Status   Status
	Detail   string
	Duration time.Duration
}

// Result is the outcome of a whole pipeline run.
type Result struct {
	BuildID    string
	Started    time.Time
	Finished   time.Time
	Gates      []GateResult
	BundlePath string
}

// Pipeline runs the build.
type Pipeline struct {
	Spec    *bundlespec.App
	SpecDir string
	// Manifest is the dependency manifest path; empty skips manifest install.
	Manifest string
	// VenvDir overrides the environment directory; defaults to
	// SpecDir/.venv. Ignored when VIRTUAL_ENV points at a live environment.
	VenvDir     string
	SkipBrowser bool
	// ApplicationsDir overrides where browser bundles are probed for;
	// defaults to /Applications.
	ApplicationsDir string

	Runner runner.Runner
	Brew   *brew.Brew
	Getenv func(string) string
	Stat   func(string) (fs.FileInfo, error)
	Stdout io.Writer
	Stderr io.Writer

	// Now is overridable for tests.
	Now func() time.Time
}

// Run executes every gate in order. The returned Result covers all gates that
// ran, including the failed one.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		BuildID: uuid.NewString(),
		Started: p.now(),
	}
	defer func() { res.Finished = p.now() }()

	py, err := p.interpreterGate(ctx, res)
	if err != nil {
		return res, err
	}

	if err := p.toolkitGate(ctx, res, py); err != nil {
		return res, err
	}

	if err := p.browserGate(ctx, res); err != nil {
		return res, err
	}

	env, err := p.environmentGate(ctx, res, py)
	if err != nil {
		return res, err
	}

	if err := p.dependencyGate(ctx, res, env); err != nil {
		return res, err
	}

	bundle, err := p.packagingGate(ctx, res, env)
	if err != nil {
		return res, err
	}
	res.BundlePath = bundle

	return res, nil
}

func (p *Pipeline) interpreterGate(ctx context.Context, res *Result) (*probe.Interpreter, error) {
	start := p.now()
	output.Step(p.Stdout, "Checking Python interpreter")

	minimum, err := pyver.Parse(lo.CoalesceOrEmpty(p.Spec.MinimumPython(), DefaultMinimumPython))
	if err != nil {
		err = fmt.Errorf("invalid python minimum in bundle spec: %w", err)
		p.record(res, "interpreter", StatusFailed, err.Error(), start)

		return nil, err
	}

	py, err := (&probe.InterpreterProbe{Runner: p.Runner, Minimum: minimum}).Probe(ctx)
	if err != nil {
		p.record(res, "interpreter", StatusFailed, err.Error(), start)
		return nil, err
	}

	detail := fmt.Sprintf("%s (%s)", py.Path, py.Version)
	output.Success(p.Stdout, "Python %s at %s", py.Version, py.Path)
	p.record(res, "interpreter", StatusPassed, detail, start)

	return py, nil
}

func (p *Pipeline) toolkitGate(ctx context.Context, res *Result, py *probe.Interpreter) error {
	start := p.now()
	output.Step(p.Stdout, "Checking tkinter")

	tk := &probe.ToolkitProbe{Runner: p.Runner, Stderr: io.Discard}

	err := tk.Probe(ctx, py)
	if err == nil {
		output.Success(p.Stdout, "tkinter is available")
		p.record(res, "toolkit", StatusPassed, "tkinter importable", start)

		return nil
	}

	var missing *gate.MissingToolkitError
	if errors.As(err, &missing) && p.Brew.Available() {
		formula := "python-tk@" + py.Version.MajorMinor()
		output.Warning(p.Stdout, "tkinter missing, attempting: brew install %s", formula)

		if installErr := p.Brew.Install(ctx, formula); installErr == nil {
			err = tk.Probe(ctx, py)
		}
	}

	if err != nil {
		p.record(res, "toolkit", StatusFailed, err.Error(), start)
		return err
	}

	output.Success(p.Stdout, "tkinter installed")
	p.record(res, "toolkit", StatusFixed, "installed via brew", start)

	return nil
}

func (p *Pipeline) browserGate(ctx context.Context, res *Result) error {
	start := p.now()

	browserSpec := p.Spec.Browser
	if browserSpec == nil || p.SkipBrowser {
		p.record(res, "browser", StatusSkipped, "no browser requirement", start)
		return nil
	}

	output.Step(p.Stdout, "Checking %s", browserSpec.AppName)

	bp := &probe.BrowserProbe{Stat: p.Stat, ApplicationsDir: p.ApplicationsDir}

	err := bp.Probe(browserSpec.AppName, browserSpec.Cask)
	if err == nil {
		output.Success(p.Stdout, "%s is installed", browserSpec.AppName)
		p.record(res, "browser", StatusPassed, bp.BundlePath(browserSpec.AppName), start)

		return nil
	}

	var missing *gate.MissingBrowserError
	if errors.As(err, &missing) && missing.Cask != "" && p.Brew.Available() {
		output.Warning(p.Stdout, "%s missing, attempting: brew install --cask %s", browserSpec.AppName, missing.Cask)

		if installErr := p.Brew.InstallCask(ctx, missing.Cask); installErr == nil {
			err = bp.Probe(browserSpec.AppName, browserSpec.Cask)
		}
	}

	if err != nil {
		p.record(res, "browser", StatusFailed, err.Error(), start)
		return err
	}

	output.Success(p.Stdout, "%s installed", browserSpec.AppName)
	p.record(res, "browser", StatusFixed, "installed via brew cask", start)

	return nil
}

func (p *Pipeline) environmentGate(ctx context.Context, res *Result, py *probe.Interpreter) (*venv.Env, error) {
	start := p.now()
	output.Step(p.Stdout, "Preparing isolated environment")

	if env, ok := venv.Active(p.Getenv, p.Stat); ok {
		output.Success(p.Stdout, "Using active environment %s", env.Dir)
		p.record(res, "environment", StatusPassed, "active: "+env.Dir, start)

		return env, nil
	}

	dir := lo.CoalesceOrEmpty(p.VenvDir, filepath.Join(p.SpecDir, venv.DefaultDir))

	env, created, err := venv.Ensure(ctx, p.Runner, p.Stat, py.Path, dir, p.Stderr)
	if err != nil {
		p.record(res, "environment", StatusFailed, err.Error(), start)
		return nil, err
	}

	if created {
		output.Success(p.Stdout, "Created environment %s", env.Dir)
		p.record(res, "environment", StatusFixed, "created: "+env.Dir, start)
	} else {
		output.Success(p.Stdout, "Reusing environment %s", env.Dir)
		p.record(res, "environment", StatusPassed, "existing: "+env.Dir, start)
	}

	return env, nil
}

func (p *Pipeline) dependencyGate(ctx context.Context, res *Result, env *venv.Env) error {
	start := p.now()
	output.Step(p.Stdout, "Installing dependencies")

	installer := &pip.Installer{
		Python: env.Python(),
		Runner: p.Runner,
		Stdout: p.Stdout,
		Stderr: p.Stderr,
		Quiet:  true,
	}

	if err := installer.UpgradePip(ctx); err != nil {
		p.record(res, "dependencies", StatusFailed, err.Error(), start)
		return err
	}

	if p.Manifest != "" {
		if err := installer.InstallRequirements(ctx, p.Manifest); err != nil {
			p.record(res, "dependencies", StatusFailed, err.Error(), start)
			return err
		}
	}

	if err := installer.Install(ctx, "pyinstaller"); err != nil {
		p.record(res, "dependencies", StatusFailed, err.Error(), start)
		return err
	}

	output.Success(p.Stdout, "Dependencies installed")
	p.record(res, "dependencies", StatusPassed, "manifest + pyinstaller", start)

	return nil
}

func (p *Pipeline) packagingGate(ctx context.Context, res *Result, env *venv.Env) (string, error) {
	start := p.now()
	output.Step(p.Stdout, "Packaging %s", p.Spec.BundleName())

	pk := &packager.Packager{
		App:     p.Spec,
		Python:  env.Python(),
		Runner:  p.Runner,
		WorkDir: p.SpecDir,
		Stdout:  p.Stdout,
		Stderr:  p.Stderr,
	}

	bundle, err := pk.Package(ctx)
	if err != nil {
		p.record(res, "packaging", StatusFailed, err.Error(), start)
		return "", err
	}

	p.record(res, "packaging", StatusPassed, bundle, start)

	return bundle, nil
}

func (p *Pipeline) record(res *Result, name string, status Status, detail string, start time.Time) {
	res.Gates = append(res.Gates, GateResult{
		Gate:     name,
		Status:   status,
		Detail:   detail,
		Duration: p.now().Sub(start),
	})
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}

	return time.Now()
}
