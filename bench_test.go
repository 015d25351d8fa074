package zipidx

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/meigma/zipidx/internal/testutil"
)

var (
	benchSinkArchive *Archive
	benchSinkBytes   []byte
	errBenchSink     error //nolint:errname // not a sentinel error, just a sink variable
)

// benchZip builds an archive with count synthetic source members plus a
// fresh sidecar index next to it.
func benchZip(b *testing.B, count int) string {
	b.Helper()

	rng := rand.New(rand.NewSource(1))
	entries := make([]testutil.ZipEntry, 0, count)
	for i := range count {
		entries = append(entries, testutil.ZipEntry{
			Name:    fmt.Sprintf("pkg%d/mod%d.py", i%16, i),
			Content: fmt.Sprintf("VALUE = %d\n", rng.Int()),
		})
	}
	archive := testutil.BuildZip(b, b.TempDir(), "bench.zip", entries)

	a, err := Open(archive, WithoutIndex(), WithConvention(ConventionPosix))
	if err != nil {
		b.Fatal(err)
	}
	if err := a.WriteIndex(); err != nil {
		b.Fatal(err)
	}
	return archive
}

func BenchmarkOpen(b *testing.B) {
	for _, count := range []int{64, 512, 4096} {
		archive := benchZip(b, count)

		b.Run(fmt.Sprintf("members=%d/index", count), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				benchSinkArchive, errBenchSink = Open(archive, WithConvention(ConventionPosix))
			}
			if errBenchSink != nil {
				b.Fatal(errBenchSink)
			}
			if !benchSinkArchive.FromIndex() {
				b.Fatal("expected the sidecar fast path")
			}
		})

		b.Run(fmt.Sprintf("members=%d/scan", count), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				benchSinkArchive, errBenchSink = Open(archive, WithoutIndex(), WithConvention(ConventionPosix))
			}
			if errBenchSink != nil {
				b.Fatal(errBenchSink)
			}
		})
	}
}

func BenchmarkReadMember(b *testing.B) {
	archive := benchZip(b, 512)
	a, err := Open(archive, WithConvention(ConventionPosix))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		benchSinkBytes, errBenchSink = a.ReadMember("pkg0/mod0.py")
	}
	if errBenchSink != nil {
		b.Fatal(errBenchSink)
	}
}
