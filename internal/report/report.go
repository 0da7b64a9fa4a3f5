// Package report renders a build run as a YAML artifact.
package report

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/pipeline"
)

// Report is the serialized outcome of a build run.
type Report struct {
	BuildID  string    `yaml:"build_id"`
	App      string    `yaml:"app"`
	Version  string    `yaml:"version"`
	Bundle   string    `yaml:"bundle,omitempty"`
	Started  time.Time `yaml:"started"`
	Finished time.Time `yaml:"finished"`
	Duration string    `yaml:"duration"`
	Gates    []Gate    `yaml:"gates"`
}

// Gate is the serialized outcome of one pipeline gate.
type Gate struct {
	Name     string `yaml:"name"`
	Status   string `yaml:"status"`
	Detail   string `yaml:"detail,omitempty"`
	Duration string `yaml:"duration"`
}

// FromResult builds a Report from a pipeline result.
func FromResult(app *bundlespec.App, res *pipeline.Result) *Report {
	r := &Report{
		BuildID:  res.BuildID,
		App:      app.Name,
		Version:  app.Version,
		Bundle:   res.BundlePath,
		Started:  res.Started,
		Finished: res.Finished,
		Duration: res.Finished.Sub(res.Started).Round(time.Millisecond).String(),
	}

	for _, g := range res.Gates {
		r.Gates = append(r.Gates, Gate{
			Name:     g.Gate,
			Status:   string(g.Status),
			Detail:   g.Detail,
			Duration: g.Duration.Round(time.Millisecond).String(),
		})
	}

	return r
}

// Write marshals the report to path.
func (r *Report) Write(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // Build artifact, not a secret
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
