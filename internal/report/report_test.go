package report_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/pipeline"
	"github.com/pybundle/pybundle/internal/report"
)

func testResult() *pipeline.Result {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	return &pipeline.Result{
		BuildID:    "53c3c82e-7587-4b70-b852-cbbfcd6112b5",
		Started:    started,
		Finished:   started.Add(90 * time.Second),
		BundlePath: "dist/Tool.app",
		Gates: []pipeline.GateResult{
			{Gate: "interpreter", Status: pipeline.StatusPassed, Detail: "/usr/bin/python3 (3.11.4)", Duration: 120 * time.Millisecond},
			{Gate: "browser", Status: pipeline.StatusSkipped, Detail: "no browser requirement"},
			{Gate: "packaging", Status: pipeline.StatusPassed, Detail: "dist/Tool.app", Duration: 80 * time.Second},
		},
	}
}

func TestFromResult(t *testing.T) {
	t.Parallel()

	app := &bundlespec.App{Name: "Tool", Version: "1.0.0"}
	r := report.FromResult(app, testResult())

	assert.Equal(t, "Tool", r.App)
	assert.Equal(t, "1.0.0", r.Version)
	assert.Equal(t, "dist/Tool.app", r.Bundle)
	assert.Equal(t, "1m30s", r.Duration)
	require.Len(t, r.Gates, 3)
	assert.Equal(t, "interpreter", r.Gates[0].Name)
	assert.Equal(t, "passed", r.Gates[0].Status)
	assert.Equal(t, "skipped", r.Gates[1].Status)
}

func TestReport_Write(t *testing.T) {
	t.Parallel()

	app := &bundlespec.App{Name: "Tool", Version: "1.0.0"}
	r := report.FromResult(app, testResult())

	path := filepath.Join(t.TempDir(), "build-report.yaml")
	require.NoError(t, r.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded report.Report
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, r.BuildID, decoded.BuildID)
	assert.Equal(t, "Tool", decoded.App)
	require.Len(t, decoded.Gates, 3)
	assert.Equal(t, "interpreter", decoded.Gates[0].Name)
}
