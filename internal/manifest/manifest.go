// Package manifest reads pip requirements files (the declared dependency
// manifest of the application being bundled).
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// DefaultFile is the conventional manifest filename.
const DefaultFile = "requirements.txt"

// Requirement is a single declared dependency.
type Requirement struct {
	// Raw is the requirement line as written, e.g. "pandas>=2.0".
	Raw string
	// Name is the normalized project name, e.g. "pandas".
	Name string
}

// Load reads a requirements file from disk.
func Load(path string) ([]Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads requirements, skipping blank lines, comments and pip options.
func Parse(r io.Reader) ([]Requirement, error) {
	var reqs []Requirement

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		reqs = append(reqs, Requirement{Raw: line, Name: NormalizeName(projectName(line))})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return reqs, nil
}

// Canonical renders requirements as sorted normalized lines, one per
// requirement, suitable for diffing against pip freeze output.
func Canonical(reqs []Requirement) string {
	lines := make([]string, len(reqs))
	for i, r := range reqs {
		spec := strings.ToLower(strings.TrimSpace(r.Raw[len(projectName(r.Raw)):]))
		lines[i] = r.Name + spec
	}
	sort.Strings(lines)

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// NormalizeName lowercases a project name and folds runs of "-", "_" and "."
// to a single "-", per PEP 503.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	prevSep := false
	for _, r := range name {
		if r == '-' || r == '_' || r == '.' {
			prevSep = true
			continue
		}
		if prevSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		prevSep = false
		b.WriteRune(r)
	}

	return b.String()
}

// projectName strips version specifiers, extras and environment markers from
// a requirement line.
func projectName(line string) string {
	end := len(line)
	for _, sep := range []string{"==", ">=", "<=", "~=", "!=", ">", "<", "[", ";", " ", "\t"} {
		if i := strings.Index(line, sep); i >= 0 && i < end {
			end = i
		}
	}

	return line[:end]
}
