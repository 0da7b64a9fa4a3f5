// Package pyver parses and compares Python interpreter versions.
package pyver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a Python interpreter version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a dotted version string such as "3.11.4" or "3.9".
func Parse(s string) (Version, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 3)
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	var v Version
	for i, dst := range []*int{&v.Major, &v.Minor, &v.Patch} {
		if i >= len(parts) {
			break
		}

		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		*dst = n
	}

	return v, nil
}

// MustParse is Parse for known-good constants; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// AtLeast reports whether v is the same as or newer than min.
func (v Version) AtLeast(min Version) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	if v.Minor != min.Minor {
		return v.Minor > min.Minor
	}

	return v.Patch >= min.Patch
}

// MajorMinor returns "X.Y", the form Homebrew formulae are versioned by.
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
