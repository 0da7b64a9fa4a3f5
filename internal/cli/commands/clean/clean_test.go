package clean_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/cli/commands/clean"
	"github.com/pybundle/pybundle/internal/cli/confirm"
)

func project(t *testing.T, dirs ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	return root
}

func prompter(answer string) *confirm.Prompter {
	return &confirm.Prompter{
		Stdin:  strings.NewReader(answer),
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("removes build and dist", func(t *testing.T) {
		t.Parallel()

		root := project(t, "build", "dist", ".venv")

		stdout := &bytes.Buffer{}
		r := &clean.Runner{
			Prompter:  prompter("y\n"),
			Stat:      os.Stat,
			RemoveAll: os.RemoveAll,
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
		}

		err := r.Run(context.Background(), clean.Options{Dir: root})
		require.NoError(t, err)
		assert.NoDirExists(t, filepath.Join(root, "build"))
		assert.NoDirExists(t, filepath.Join(root, "dist"))
		assert.DirExists(t, filepath.Join(root, ".venv"))
		assert.Contains(t, stdout.String(), "Removed")
	})

	t.Run("includes the venv with --venv", func(t *testing.T) {
		t.Parallel()

		root := project(t, "dist", ".venv")

		r := &clean.Runner{
			Prompter:  prompter(""),
			Stat:      os.Stat,
			RemoveAll: os.RemoveAll,
			Stdout:    &bytes.Buffer{},
			Stderr:    &bytes.Buffer{},
		}

		err := r.Run(context.Background(), clean.Options{Dir: root, Venv: true, SkipConfirm: true})
		require.NoError(t, err)
		assert.NoDirExists(t, filepath.Join(root, ".venv"))
	})

	t.Run("nothing to clean", func(t *testing.T) {
		t.Parallel()

		root := project(t)

		stdout := &bytes.Buffer{}
		r := &clean.Runner{
			Prompter:  prompter(""),
			Stat:      os.Stat,
			RemoveAll: os.RemoveAll,
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
		}

		err := r.Run(context.Background(), clean.Options{Dir: root})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Nothing to clean.")
	})

	t.Run("declined prompt removes nothing", func(t *testing.T) {
		t.Parallel()

		root := project(t, "dist")

		stdout := &bytes.Buffer{}
		removed := false
		r := &clean.Runner{
			Prompter: prompter("n\n"),
			Stat:     os.Stat,
			RemoveAll: func(string) error {
				removed = true

				return nil
			},
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
		}

		err := r.Run(context.Background(), clean.Options{Dir: root})
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Contains(t, stdout.String(), "Aborted.")
	})
}
