package zipidx

import (
	"io/fs"
	"strings"

	"github.com/meigma/zipidx/internal/ziptype"
)

// Module is the result of resolving a fully qualified module name against
// an archive.
type Module struct {
	// Name is the fully qualified dotted module name.
	Name string

	// Path is the member path of the module's artifact within the archive.
	Path string

	// IsPackage reports whether the module resolved to a package
	// ("name/__init__.*" rather than "name.*").
	IsPackage bool

	// IsBytecode reports whether the artifact is compiled bytecode rather
	// than source.
	IsBytecode bool
}

// Importer adapts an Archive to find/load-module semantics for the host's
// import machinery. It is a thin façade over table lookups and ReadMember;
// all caching behavior lives in the Archive.
//
// An optional prefix scopes resolution to a subdirectory inside the
// archive, mirroring path entries that point below the archive root.
type Importer struct {
	archive *Archive
	prefix  string
}

// Artifacts are searched in this order: package forms before module forms,
// bytecode before source within each.
var searchOrder = []struct {
	suffix     string
	isPackage  bool
	isBytecode bool
}{
	{"/__init__.pyc", true, true},
	{"/__init__.py", true, false},
	{".pyc", false, true},
	{".py", false, false},
}

// NewImporter creates an Importer over an open archive. The prefix, when
// not empty, is a slash-separated path inside the archive that module
// resolution is rooted at.
func NewImporter(a *Archive, prefix string) *Importer {
	prefix = ziptype.NormalizePath(prefix, a.conv)
	if prefix != "" {
		prefix += string(a.conv.Separator())
	}
	return &Importer{archive: a, prefix: prefix}
}

// FindModule resolves a fully qualified module name. It reports false when
// no artifact for the name exists in the archive; that is a negative
// lookup, not an error.
func (imp *Importer) FindModule(fullname string) (Module, bool) {
	head := imp.prefix + tailName(fullname)
	for _, s := range searchOrder {
		path := head + ziptype.FromSlash(s.suffix, imp.archive.conv)
		if _, ok := imp.archive.Entry(path); ok {
			return Module{
				Name:       fullname,
				Path:       path,
				IsPackage:  s.isPackage,
				IsBytecode: s.isBytecode,
			}, true
		}
	}
	return Module{}, false
}

// IsPackage reports whether the named module is a package. An unknown
// module yields fs.ErrNotExist.
func (imp *Importer) IsPackage(fullname string) (bool, error) {
	m, ok := imp.FindModule(fullname)
	if !ok {
		return false, &fs.PathError{Op: "find", Path: fullname, Err: fs.ErrNotExist}
	}
	return m.IsPackage, nil
}

// GetData returns the content of an arbitrary archive member. The path may
// be given relative to the archive root or prefixed with the archive path,
// as the host import protocol hands out both forms.
func (imp *Importer) GetData(path string) ([]byte, error) {
	archivePrefix := imp.archive.path + string(imp.archive.conv.Separator())
	path = strings.TrimPrefix(path, archivePrefix)
	return imp.archive.ReadMember(path)
}

// GetCode returns the bytes of the artifact an import of fullname would
// execute: bytecode when present, source otherwise. Compiling is the
// host's concern.
func (imp *Importer) GetCode(fullname string) ([]byte, error) {
	m, ok := imp.FindModule(fullname)
	if !ok {
		return nil, &fs.PathError{Op: "find", Path: fullname, Err: fs.ErrNotExist}
	}
	return imp.archive.ReadMember(m.Path)
}

// GetSource returns the module's source text, or nil when the archive
// holds the module only in compiled form.
func (imp *Importer) GetSource(fullname string) ([]byte, error) {
	m, ok := imp.FindModule(fullname)
	if !ok {
		return nil, &fs.PathError{Op: "find", Path: fullname, Err: fs.ErrNotExist}
	}

	srcPath := imp.prefix + tailName(fullname)
	if m.IsPackage {
		srcPath += ziptype.FromSlash("/__init__.py", imp.archive.conv)
	} else {
		srcPath += ".py"
	}
	data, err := imp.archive.ReadMember(srcPath)
	if err != nil {
		// Bytecode-only module: the module exists but has no source.
		if _, ok := imp.archive.Entry(srcPath); !ok {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// GetFilename returns the artifact path an import of fullname would
// record, rooted at the archive path.
func (imp *Importer) GetFilename(fullname string) (string, error) {
	m, ok := imp.FindModule(fullname)
	if !ok {
		return "", &fs.PathError{Op: "find", Path: fullname, Err: fs.ErrNotExist}
	}
	return imp.archive.path + string(imp.archive.conv.Separator()) + m.Path, nil
}

// tailName returns the last component of a dotted module name.
func tailName(fullname string) string {
	if i := strings.LastIndexByte(fullname, '.'); i >= 0 {
		return fullname[i+1:]
	}
	return fullname
}
