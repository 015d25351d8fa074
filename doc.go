// Package zipidx speeds up loading of zip code archives by replacing the
// per-open central-directory scan with a precomputed sidecar index.
//
// An index file sits next to the archive (for example "mylib.zip.posix.idx")
// and holds the parsed directory table in a compact binary form, optionally
// with selected member contents inlined so they are served without touching
// the archive at all. Opening an archive prefers the index and silently
// falls back to a live scan when the index is missing, corrupt, or built
// for a different path convention.
//
// The index is a pure cache: nothing re-verifies that it still matches the
// archive contents. Callers that rebuild archives are responsible for
// rebuilding the index, or for calling VerifyIndex when they need an
// explicit check.
//
// The package implements fs.FS and related interfaces for stdlib
// compatibility, and Importer exposes find/load-module semantics over an
// open archive for import-hook integrations.
package zipidx
