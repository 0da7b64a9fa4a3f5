// Package bundlespec loads the declarative bundle specification consumed by
// the packaging step.
//
// The specification is a single HCL file (Bundle.hcl by convention) with one
// app block describing the entry script, bundled data files and the metadata
// written into the application bundle.
package bundlespec

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/samber/lo"
)

// DefaultFile is the conventional bundle spec filename.
const DefaultFile = "Bundle.hcl"

// File is the top-level structure of a bundle spec file.
type File struct {
	App *App `hcl:"app,block"`
}

// App describes the application to bundle. The block label is the output
// bundle name.
type App struct {
	Name           string   `hcl:"name,label"`
	Entry          string   `hcl:"entry"`
	Version        string   `hcl:"version"`
	Identifier     string   `hcl:"identifier"`
	DisplayName    string   `hcl:"display_name,optional"`
	Console        bool     `hcl:"console,optional"`
	HighResolution bool     `hcl:"high_resolution,optional"`
	MinimumOS      string   `hcl:"minimum_os,optional"`
	Data           []Data   `hcl:"data,block"`
	Browser        *Browser `hcl:"browser,block"`
	Python         *Python  `hcl:"python,block"`
}

// Data maps an extra file into the bundle. The block label is the source path
// relative to the spec file.
type Data struct {
	Source string `hcl:"source,label"`
	Dest   string `hcl:"dest"`
}

// Browser declares a third-party browser the packaged application requires at
// runtime. The build verifies its presence before packaging.
type Browser struct {
	AppName string `hcl:"app_name"`
	Cask    string `hcl:"cask,optional"`
}

// Python constrains the interpreter used for provisioning and packaging.
type Python struct {
	Minimum string `hcl:"minimum,optional"`
}

// identifierRe matches reverse-DNS bundle identifiers such as
// "de.billiger.pricechecker".
var identifierRe = regexp.MustCompile(`^[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)

// ValidIdentifier reports whether s is a reverse-DNS bundle identifier.
func ValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Load parses and decodes a bundle spec file.
func Load(path string) (*App, error) {
	parser := hclparse.NewParser()

	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse bundle spec %s: %w", path, diags)
	}

	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode bundle spec %s: %w", path, diags)
	}

	if file.App == nil {
		return nil, fmt.Errorf("bundle spec %s has no app block", path)
	}

	app := file.App
	app.DisplayName = lo.CoalesceOrEmpty(app.DisplayName, app.Name)

	return app, nil
}

// Validate checks the spec for problems that would make packaging fail or
// produce a broken bundle. baseDir is the directory containing the spec file;
// entry and data sources are resolved against it.
func (a *App) Validate(baseDir string) error {
	var problems []string

	if strings.TrimSpace(a.Name) == "" {
		problems = append(problems, "app name must not be empty")
	}

	switch {
	case strings.TrimSpace(a.Entry) == "":
		problems = append(problems, "entry is required")
	default:
		if _, err := os.Stat(filepath.Join(baseDir, a.Entry)); err != nil {
			problems = append(problems, fmt.Sprintf("entry script %s does not exist", a.Entry))
		}
	}

	if strings.TrimSpace(a.Version) == "" {
		problems = append(problems, "version must not be empty")
	}

	if !ValidIdentifier(a.Identifier) {
		problems = append(problems, fmt.Sprintf("identifier %q is not a reverse-DNS bundle identifier", a.Identifier))
	}

	for _, d := range a.Data {
		if _, err := os.Stat(filepath.Join(baseDir, d.Source)); err != nil {
			problems = append(problems, fmt.Sprintf("data file %s does not exist", d.Source))
		}
		if strings.TrimSpace(d.Dest) == "" {
			problems = append(problems, fmt.Sprintf("data file %s has an empty dest", d.Source))
		}
	}

	if a.Browser != nil && strings.TrimSpace(a.Browser.AppName) == "" {
		problems = append(problems, "browser block requires app_name")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid bundle spec: %s", strings.Join(problems, "; "))
	}

	return nil
}

// MinimumPython returns the declared interpreter constraint, or "" when the
// spec leaves it to the built-in default.
func (a *App) MinimumPython() string {
	if a.Python == nil {
		return ""
	}

	return a.Python.Minimum
}

// BundleName returns the output artifact name, e.g. "BilligerPriceChecker.app".
func (a *App) BundleName() string {
	return a.Name + ".app"
}

// BundlePath returns the output artifact path relative to baseDir.
func (a *App) BundlePath(baseDir string) string {
	return filepath.Join(baseDir, "dist", a.BundleName())
}
