// Package packager renders the PyInstaller spec from the bundle specification
// and invokes the packaging tool.
package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pybundle/pybundle/internal/bundlespec"
	"github.com/pybundle/pybundle/internal/runner"
)

// Packager freezes the application into a standalone .app bundle.
type Packager struct {
	App    *bundlespec.App
	Python string // the isolated environment's interpreter
	Runner runner.Runner
	// WorkDir is the directory containing the bundle spec; the packaging tool
	// runs there and writes build/ and dist/ under it.
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
}

// specTemplate is the PyInstaller spec rendered for macOS bundles. The
// info_plist entries carry the display metadata PyInstaller has no CLI flags
// for.
var specTemplate = template.Must(template.New("spec").Funcs(template.FuncMap{
	"py":   pyString,
	"bool": pyBool,
}).Parse(`# -*- mode: python ; coding: utf-8 -*-

a = Analysis(
    [{{ py .Entry }}],
    pathex=[],
    binaries=[],
    datas=[{{ range .Data }}({{ py .Source }}, {{ py .Dest }}), {{ end }}],
    hiddenimports=[],
    hookspath=[],
    hooksconfig={},
    runtime_hooks=[],
    excludes=[],
    noarchive=False,
)

pyz = PYZ(a.pure)

exe = EXE(
    pyz,
    a.scripts,
    [],
    exclude_binaries=True,
    name={{ py .Name }},
    debug=False,
    bootloader_ignore_signals=False,
    strip=False,
    upx=True,
    console={{ bool .Console }},
    argv_emulation=False,
)

coll = COLLECT(
    exe,
    a.binaries,
    a.datas,
    strip=False,
    upx=True,
    name={{ py .Name }},
)

app = BUNDLE(
    coll,
    name={{ py .BundleName }},
    icon=None,
    bundle_identifier={{ py .Identifier }},
    info_plist={
        'CFBundleName': {{ py .Name }},
        'CFBundleDisplayName': {{ py .DisplayName }},
        'CFBundleShortVersionString': {{ py .Version }},
        'NSHighResolutionCapable': {{ bool .HighResolution }},
{{- if .MinimumOS }}
        'LSMinimumSystemVersion': {{ py .MinimumOS }},
{{- end }}
    },
)
`))

// RenderSpec renders the PyInstaller spec file content.
func (p *Packager) RenderSpec() (string, error) {
	var b strings.Builder
	if err := specTemplate.Execute(&b, p.App); err != nil {
		return "", fmt.Errorf("failed to render packaging spec: %w", err)
	}

	return b.String(), nil
}

// WriteSpec writes the rendered spec next to the bundle spec and returns its
// path.
func (p *Packager) WriteSpec() (string, error) {
	content, err := p.RenderSpec()
	if err != nil {
		return "", err
	}

	path := filepath.Join(p.WorkDir, p.App.Name+".spec")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // Build artifact, not a secret
		return "", fmt.Errorf("failed to write packaging spec: %w", err)
	}

	return path, nil
}

// Package writes the spec and invokes the packaging tool with a clean
// rebuild. It returns the produced bundle path.
func (p *Packager) Package(ctx context.Context) (string, error) {
	specPath, err := p.WriteSpec()
	if err != nil {
		return "", err
	}

	err = p.Runner.Run(ctx, runner.Cmd{
		Name:   p.Python,
		Args:   []string{"-m", "PyInstaller", "--clean", "--noconfirm", filepath.Base(specPath)},
		Dir:    p.WorkDir,
		Stdout: p.Stdout,
		Stderr: p.Stderr,
	})
	if err != nil {
		return "", fmt.Errorf("packaging failed: %w", err)
	}

	return p.App.BundlePath(p.WorkDir), nil
}

// pyString quotes a string as a Python single-quoted literal.
func pyString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)

	return "'" + s + "'"
}

func pyBool(b bool) string {
	if b {
		return "True"
	}

	return "False"
}
