// Package runnertest provides a scripted fake runner for tests.
package runnertest

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/pybundle/pybundle/internal/runner"
)

// Response scripts the outcome of a command whose line contains Match.
// A positive Times limits how often the response applies; afterwards later
// responses (or the default success) take over.
type Response struct {
	Match  string
	Stdout string
	Err    error
	Times  int

	used int
}

// Fake is a runner.Runner that records calls and replays scripted responses.
// Commands with no matching response succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	calls     []runner.Cmd
	Responses []Response
	Paths     map[string]string // LookPath results; absent names are not found
}

var _ runner.Runner = (*Fake)(nil)

func (f *Fake) Run(_ context.Context, cmd runner.Cmd) error {
	f.record(cmd)

	resp, ok := f.match(cmd)
	if !ok {
		return nil
	}
	if resp.Stdout != "" && cmd.Stdout != nil {
		_, _ = cmd.Stdout.Write([]byte(resp.Stdout))
	}

	return resp.Err
}

func (f *Fake) Output(_ context.Context, cmd runner.Cmd) (string, error) {
	f.record(cmd)

	resp, ok := f.match(cmd)
	if !ok {
		return "", nil
	}

	return resp.Stdout, resp.Err
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if path, ok := f.Paths[name]; ok {
		return path, nil
	}

	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Calls returns the recorded invocations.
func (f *Fake) Calls() []runner.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]runner.Cmd(nil), f.calls...)
}

// CommandLines returns the recorded invocations as joined command lines,
// convenient for substring assertions.
func (f *Fake) CommandLines() []string {
	calls := f.Calls()

	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}

	return lines
}

// Ran reports whether any recorded command line contains substr.
func (f *Fake) Ran(substr string) bool {
	for _, line := range f.CommandLines() {
		if strings.Contains(line, substr) {
			return true
		}
	}

	return false
}

func (f *Fake) record(cmd runner.Cmd) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cmd)
}

func (f *Fake) match(cmd runner.Cmd) (Response, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	line := cmd.String()
	for i := range f.Responses {
		resp := &f.Responses[i]
		if !strings.Contains(line, resp.Match) {
			continue
		}
		if resp.Times > 0 && resp.used >= resp.Times {
			continue
		}
		resp.used++

		return *resp, true
	}

	return Response{}, false
}
