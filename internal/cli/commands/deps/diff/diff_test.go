package diff_test

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/cli/commands/deps/diff"
	"github.com/pybundle/pybundle/internal/runner/runnertest"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func venvGetenv(dir string) func(string) string {
	return func(key string) string {
		if key == "VIRTUAL_ENV" {
			return dir
		}

		return ""
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("in sync", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeManifest(t, dir, "pandas==2.0.1\nselenium==4.10.0\n")
		venvDir := filepath.Join(dir, ".venv")
		require.NoError(t, os.MkdirAll(venvDir, 0o755))

		fake := &runnertest.Fake{
			Responses: []runnertest.Response{
				{Match: "pip freeze", Stdout: "pandas==2.0.1\nselenium==4.10.0\nurllib3==2.0.4\n"},
			},
		}

		stdout := &bytes.Buffer{}
		r := &diff.Runner{
			Runner: fake,
			Getenv: venvGetenv(venvDir),
			Stat:   os.Stat,
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), diff.Options{ManifestPath: path, Dir: dir})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "in sync")
		assert.True(t, fake.Ran(filepath.Join(venvDir, "bin", "python")+" -m pip freeze"))
	})

	t.Run("version drift produces a unified diff", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeManifest(t, dir, "pandas==2.0.1\n")
		venvDir := filepath.Join(dir, ".venv")
		require.NoError(t, os.MkdirAll(venvDir, 0o755))

		fake := &runnertest.Fake{
			Responses: []runnertest.Response{
				{Match: "pip freeze", Stdout: "pandas==2.1.0\n"},
			},
		}

		stdout := &bytes.Buffer{}
		r := &diff.Runner{
			Runner: fake,
			Getenv: venvGetenv(venvDir),
			Stat:   os.Stat,
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), diff.Options{ManifestPath: path, Dir: dir})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "-pandas==2.0.1")
		assert.Contains(t, stdout.String(), "+pandas==2.1.0")
	})

	t.Run("transitive installs are ignored", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeManifest(t, dir, "selenium==4.10.0\n")
		venvDir := filepath.Join(dir, ".venv")
		require.NoError(t, os.MkdirAll(venvDir, 0o755))

		fake := &runnertest.Fake{
			Responses: []runnertest.Response{
				{Match: "pip freeze", Stdout: "certifi==2023.7.22\nselenium==4.10.0\nurllib3==2.0.4\n"},
			},
		}

		stdout := &bytes.Buffer{}
		r := &diff.Runner{
			Runner: fake,
			Getenv: venvGetenv(venvDir),
			Stat:   os.Stat,
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), diff.Options{ManifestPath: path, Dir: dir})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "in sync")
	})

	t.Run("falls back to the local venv without VIRTUAL_ENV", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeManifest(t, dir, "pandas==2.0.1\n")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".venv"), 0o755))

		fake := &runnertest.Fake{
			Responses: []runnertest.Response{
				{Match: "pip freeze", Stdout: "pandas==2.0.1\n"},
			},
		}

		r := &diff.Runner{
			Runner: fake,
			Getenv: func(string) string { return "" },
			Stat:   os.Stat,
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), diff.Options{ManifestPath: path, Dir: dir})
		require.NoError(t, err)
		assert.True(t, fake.Ran(filepath.Join(dir, ".venv", "bin", "python")))
	})

	t.Run("no environment anywhere", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeManifest(t, dir, "pandas==2.0.1\n")

		r := &diff.Runner{
			Runner: &runnertest.Fake{},
			Getenv: func(string) string { return "" },
			Stat: func(string) (fs.FileInfo, error) {
				return nil, os.ErrNotExist
			},
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), diff.Options{ManifestPath: path, Dir: dir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no isolated environment")
	})
}
