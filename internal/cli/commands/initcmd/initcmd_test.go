package initcmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/cli/commands/initcmd"
)

// fakePrompter replays canned answers in prompt order.
type fakePrompter struct {
	inputs   []string
	confirms []bool
}

func (f *fakePrompter) Input(_, def string, validate func(string) error) (string, error) {
	answer := def
	if len(f.inputs) > 0 {
		answer = f.inputs[0]
		f.inputs = f.inputs[1:]
	}

	if validate != nil {
		if err := validate(answer); err != nil {
			return "", err
		}
	}

	return answer, nil
}

func (f *fakePrompter) Confirm(_ string, def bool) (bool, error) {
	if len(f.confirms) == 0 {
		return def, nil
	}

	answer := f.confirms[0]
	f.confirms = f.confirms[1:]

	return answer, nil
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("full spec round-trips through the loader", func(t *testing.T) {
		t.Parallel()

		in := initcmd.Input{
			Name:           "PriceChecker",
			DisplayName:    "Price Checker",
			Entry:          "gui.py",
			Version:        "1.0.0",
			Identifier:     "de.example.pricechecker",
			HighResolution: true,
			MinimumOS:      "11.0",
			BrowserApp:     "Google Chrome",
			BrowserCask:    "google-chrome",
			PythonMinimum:  "3.9",
		}

		dir := t.TempDir()
		path := filepath.Join(dir, "Bundle.hcl")
		require.NoError(t, os.WriteFile(path, initcmd.Render(in), 0o644))

		app, err := bundlespec.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "PriceChecker", app.Name)
		assert.Equal(t, "Price Checker", app.DisplayName)
		assert.Equal(t, "gui.py", app.Entry)
		assert.Equal(t, "11.0", app.MinimumOS)
		assert.True(t, app.HighResolution)
		require.NotNil(t, app.Browser)
		assert.Equal(t, "Google Chrome", app.Browser.AppName)
		assert.Equal(t, "google-chrome", app.Browser.Cask)
		require.NotNil(t, app.Python)
		assert.Equal(t, "3.9", app.Python.Minimum)
	})

	t.Run("minimal spec omits optional blocks", func(t *testing.T) {
		t.Parallel()

		in := initcmd.Input{
			Name:       "Tool",
			Entry:      "tool.py",
			Version:    "0.1.0",
			Identifier: "com.example.tool",
		}

		content := string(initcmd.Render(in))
		assert.NotContains(t, content, "browser")
		assert.NotContains(t, content, "python")
		assert.NotContains(t, content, "display_name")
		assert.NotContains(t, content, "minimum_os")
	})
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes the spec from prompted answers", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "Bundle.hcl")

		stdout := &bytes.Buffer{}
		r := &initcmd.Runner{
			Prompter: &fakePrompter{
				// name, display name, entry, version, identifier,
				// minimum macOS, python minimum
				inputs: []string{"PriceChecker", "Price Checker", "gui.py", "1.0.0", "de.example.pricechecker", "", "3.9"},
				// console, high resolution, needs browser
				confirms: []bool{false, true, false},
			},
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), initcmd.Options{Path: path})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Wrote "+path)

		app, err := bundlespec.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "PriceChecker", app.Name)
		assert.Nil(t, app.Browser)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "Bundle.hcl")
		require.NoError(t, os.WriteFile(path, []byte("app \"Old\" {}\n"), 0o644))

		r := &initcmd.Runner{
			Prompter: &fakePrompter{},
			Stdout:   &bytes.Buffer{},
			Stderr:   &bytes.Buffer{},
		}

		err := r.Run(context.Background(), initcmd.Options{Path: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "Bundle.hcl")
		require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

		r := &initcmd.Runner{
			Prompter: &fakePrompter{
				inputs:   []string{"Tool", "Tool", "tool.py", "0.1.0", "com.example.tool", "", "3.9"},
				confirms: []bool{false, false, false},
			},
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), initcmd.Options{Path: path, Force: true})
		require.NoError(t, err)

		app, err := bundlespec.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Tool", app.Name)
	})

	t.Run("invalid identifier fails validation", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "Bundle.hcl")

		r := &initcmd.Runner{
			Prompter: &fakePrompter{
				inputs: []string{"Tool", "Tool", "tool.py", "0.1.0", "not-reverse-dns"},
			},
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), initcmd.Options{Path: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reverse-DNS")
		assert.NoFileExists(t, path)
	})
}
