package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pybundle/pybundle/internal/manifest"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("typical file", func(t *testing.T) {
		t.Parallel()

		reqs, err := manifest.Parse(strings.NewReader(`
# scraping
pandas>=2.0
openpyxl==3.1.2
undetected_chromedriver
selenium ; python_version >= "3.9"

--no-binary :all:
`))
		require.NoError(t, err)
		require.Len(t, reqs, 4)

		assert.Equal(t, "pandas", reqs[0].Name)
		assert.Equal(t, "pandas>=2.0", reqs[0].Raw)
		assert.Equal(t, "openpyxl", reqs[1].Name)
		assert.Equal(t, "undetected-chromedriver", reqs[2].Name)
		assert.Equal(t, "selenium", reqs[3].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		reqs, err := manifest.Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, reqs)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), manifest.DefaultFile)
		require.NoError(t, os.WriteFile(path, []byte("pandas\nselenium\n"), 0o644))

		reqs, err := manifest.Load(path)
		require.NoError(t, err)
		assert.Len(t, reqs, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := manifest.Load(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"pandas", "pandas"},
		{"Undetected_ChromeDriver", "undetected-chromedriver"},
		{"zope.interface", "zope-interface"},
		{"a--b__c", "a-b-c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, manifest.NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	reqs, err := manifest.Parse(strings.NewReader("Selenium==4.21.0\npandas>=2.0\n"))
	require.NoError(t, err)

	got := manifest.Canonical(reqs)
	assert.Equal(t, "pandas>=2.0\nselenium==4.21.0\n", got)
}
