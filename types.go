package zipidx

import "github.com/meigma/zipidx/internal/ziptype"

// --- Re-exports from internal/ziptype ---

// Entry describes one archive member.
type Entry = ziptype.Entry

// Method identifies the compression method of an archive member.
type Method = ziptype.Method

// Convention identifies the path-naming rules a table was built for.
type Convention = ziptype.Convention

// Method constants, matching zip central-directory codes.
const (
	MethodStored   = ziptype.MethodStored
	MethodDeflated = ziptype.MethodDeflated
)

// Convention constants.
const (
	ConventionPosix   = ziptype.ConventionPosix
	ConventionWindows = ziptype.ConventionWindows
)

// CurrentConvention returns the convention for the running platform.
var CurrentConvention = ziptype.CurrentConvention

// ParseConvention converts a convention name ("posix", "windows") to its value.
var ParseConvention = ziptype.ParseConvention

// NormalizePath converts a raw member path to a convention's canonical form.
var NormalizePath = ziptype.NormalizePath

// IndexSuffix is the extension shared by all sidecar index files.
const IndexSuffix = ".idx"

// IndexPath returns the sidecar index path for an archive under the given
// convention: "<archive>.<convention>.idx".
func IndexPath(archivePath string, conv Convention) string {
	return archivePath + "." + conv.String() + IndexSuffix
}
