package zipidx

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/meigma/zipidx/internal/index"
)

// inlineTemplate is the shape of the generated bootstrap file. The index
// bytes are embedded as a quoted string literal, which is binary-safe.
var inlineTemplate = template.Must(template.New("inline").Parse(`// Code generated by zipidx for {{.Archive}}. DO NOT EDIT.

package {{.Package}}

import "github.com/meigma/zipidx"

// archiveIndex holds the serialized directory table for {{.Archive}}.
var archiveIndex = []byte({{.Data}})

// OpenEmbedded opens archivePath using the embedded index, skipping both
// the sidecar lookup and the central-directory scan.
func OpenEmbedded(archivePath string, opts ...zipidx.Option) (*zipidx.Archive, error) {
	return zipidx.OpenWithIndex(archivePath, archiveIndex, opts...)
}
`))

// InlineSource renders a standalone Go source file that embeds this
// archive's index, for bootstrapping an application without shipping a
// sidecar file. The embedded table is the one this handle holds, preload
// payloads included.
//
// This is a build-time convenience; the generated file is meant to be
// committed or emitted into a build, not served at runtime.
func (a *Archive) InlineSource(pkgName string) ([]byte, error) {
	if pkgName == "" {
		pkgName = "main"
	}
	data, err := index.Encode(a.table, a.conv)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = inlineTemplate.Execute(&buf, struct {
		Package string
		Archive string
		Data    string
	}{
		Package: pkgName,
		Archive: a.path,
		Data:    fmt.Sprintf("%q", data),
	})
	if err != nil {
		return nil, fmt.Errorf("render inline source: %w", err)
	}
	return buf.Bytes(), nil
}
