package pip_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/gate"
	"github.com/pybundle/pybundle/internal/pip"
	"github.com/pybundle/pybundle/internal/runner/runnertest"
)

func newInstaller(fake *runnertest.Fake, quiet bool) *pip.Installer {
	return &pip.Installer{
		Python: ".venv/bin/python",
		Runner: fake,
		Stdout: io.Discard,
		Stderr: io.Discard,
		Quiet:  quiet,
	}
}

func TestInstaller_UpgradePip(t *testing.T) {
	t.Parallel()

	fake := &runnertest.Fake{}
	require.NoError(t, newInstaller(fake, true).UpgradePip(context.Background()))
	assert.True(t, fake.Ran(".venv/bin/python -m pip install --upgrade pip --quiet"))
}

func TestInstaller_Install(t *testing.T) {
	t.Parallel()

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		fake := &runnertest.Fake{}
		require.NoError(t, newInstaller(fake, true).Install(context.Background(), "pyinstaller"))
		assert.True(t, fake.Ran("-m pip install pyinstaller --quiet"))
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()

		fake := &runnertest.Fake{}
		require.NoError(t, newInstaller(fake, false).Install(context.Background(), "pyinstaller"))
		assert.False(t, fake.Ran("--quiet"))
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		fake := &runnertest.Fake{Responses: []runnertest.Response{
			{Match: "pip install", Err: errors.New("exit status 1")},
		}}

		err := newInstaller(fake, true).Install(context.Background(), "pyinstaller")

		var installErr *gate.InstallError
		require.ErrorAs(t, err, &installErr)
		assert.Equal(t, "pip install", installErr.Step)
	})
}

func TestInstaller_InstallRequirements(t *testing.T) {
	t.Parallel()

	fake := &runnertest.Fake{}
	require.NoError(t, newInstaller(fake, true).InstallRequirements(context.Background(), "requirements.txt"))
	assert.True(t, fake.Ran("-m pip install -r requirements.txt --quiet"))
}

func TestInstaller_Freeze(t *testing.T) {
	t.Parallel()

	t.Run("returns output", func(t *testing.T) {
		t.Parallel()

		fake := &runnertest.Fake{Responses: []runnertest.Response{
			{Match: "pip freeze", Stdout: "pandas==2.2.0\nselenium==4.21.0\n"},
		}}

		out, err := newInstaller(fake, true).Freeze(context.Background())
		require.NoError(t, err)
		assert.Contains(t, out, "pandas==2.2.0")
	})

	t.Run("never passes --quiet", func(t *testing.T) {
		t.Parallel()

		fake := &runnertest.Fake{}
		_, err := newInstaller(fake, true).Freeze(context.Background())
		require.NoError(t, err)
		assert.False(t, fake.Ran("--quiet"))
	})
}
