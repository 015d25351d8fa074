package ziptype

import (
	"fmt"
	"runtime"
	"strings"
)

// Convention identifies the path-naming rules a table was built for.
//
// The convention decides the separator used in entry paths and the suffix
// of the sidecar index file. A loader only adopts an index whose recorded
// convention matches its own; anything else falls back to a live scan.
type Convention uint8

const (
	ConventionPosix Convention = iota
	ConventionWindows
)

func (c Convention) String() string {
	switch c {
	case ConventionPosix:
		return "posix"
	case ConventionWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// Separator returns the path separator for the convention.
func (c Convention) Separator() byte {
	if c == ConventionWindows {
		return '\\'
	}
	return '/'
}

// Valid reports whether c is a known convention.
func (c Convention) Valid() bool {
	return c == ConventionPosix || c == ConventionWindows
}

// CurrentConvention returns the convention for the running platform.
func CurrentConvention() Convention {
	if runtime.GOOS == "windows" {
		return ConventionWindows
	}
	return ConventionPosix
}

// ParseConvention converts a convention name to its value.
func ParseConvention(s string) (Convention, error) {
	switch s {
	case "posix":
		return ConventionPosix, nil
	case "windows":
		return ConventionWindows, nil
	default:
		return 0, fmt.Errorf("unknown path convention %q", s)
	}
}

// NormalizePath converts a raw member path to the convention's canonical
// form. It is total and deterministic: both separator styles collapse to
// the convention's separator, leading and trailing separators are stripped,
// and consecutive separators are merged.
func NormalizePath(raw string, conv Convention) string {
	sep := string(conv.Separator())

	raw = strings.ReplaceAll(raw, "\\", "/")
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return ""
	}

	parts := strings.Split(raw, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return strings.Join(result, sep)
}

// ToSlash converts a convention path to slash-separated form.
func ToSlash(path string, conv Convention) string {
	if conv == ConventionWindows {
		return strings.ReplaceAll(path, "\\", "/")
	}
	return path
}

// FromSlash converts a slash-separated path to the convention's separator.
func FromSlash(path string, conv Convention) string {
	if conv == ConventionWindows {
		return strings.ReplaceAll(path, "/", "\\")
	}
	return path
}
