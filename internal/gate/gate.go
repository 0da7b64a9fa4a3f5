// Package gate defines the typed failures of the provisioning pipeline.
//
// Every gate failure is terminal: the pipeline stops at the first one and the
// CLI exits non-zero after printing the error and, when available, its
// remediation instructions.
package gate

import (
	"fmt"

	"github.com/pybundle/pybundle/internal/pyver"
)

// Remediator is implemented by errors that carry instructions the user can
// follow to fix the failed precondition.
type Remediator interface {
	Remediation() string
}

// MissingInterpreterError reports an absent or too-old Python interpreter.
type MissingInterpreterError struct {
	Name    string
	Minimum pyver.Version
	Found   pyver.Version // zero when the interpreter was not found at all
}

func (e *MissingInterpreterError) Error() string {
	if e.Found == (pyver.Version{}) {
		return fmt.Sprintf("%s not found on PATH", e.Name)
	}

	return fmt.Sprintf("%s %s is older than the required %s", e.Name, e.Found, e.Minimum)
}

func (e *MissingInterpreterError) Remediation() string {
	return fmt.Sprintf(`Install Python %s or newer. On macOS with Homebrew:

    brew install python@%s
`, e.Minimum.MajorMinor(), e.Minimum.MajorMinor())
}

// MissingToolkitError reports that the tkinter binding is not importable.
type MissingToolkitError struct {
	PythonVersion pyver.Version
}

func (e *MissingToolkitError) Error() string {
	return "tkinter is not installed"
}

func (e *MissingToolkitError) Remediation() string {
	mm := e.PythonVersion.MajorMinor()

	return fmt.Sprintf(`On macOS with Homebrew, run:

    brew install python-tk@%s

If that formula is unavailable, install tcl-tk and reinstall Python:

    brew install tcl-tk && brew reinstall python@%s
`, mm, mm)
}

// MissingBrowserError reports an absent third-party browser application bundle.
type MissingBrowserError struct {
	AppName string
	Cask    string
}

func (e *MissingBrowserError) Error() string {
	return fmt.Sprintf("%s is not installed", e.AppName)
}

func (e *MissingBrowserError) Remediation() string {
	if e.Cask == "" {
		return fmt.Sprintf("Install %s and run the build again.\n", e.AppName)
	}

	return fmt.Sprintf(`Install %s manually, or via Homebrew:

    brew install --cask %s
`, e.AppName, e.Cask)
}

// InstallError reports a failed installation command.
type InstallError struct {
	Step string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
