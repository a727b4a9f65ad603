// internal/runutil/runutil.go
package runutil

import (
	"compress/gzip"
	"io"
	"os"
	"runtime"
	"strings"
)

// EffectiveThreads returns the worker count for a --threads value:
// 0 (or less) means all CPUs, and there is never more than one worker per
// input.
func EffectiveThreads(threads, inputs int) int {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if inputs > 0 && threads > inputs {
		threads = inputs
	}
	if threads < 1 {
		threads = 1
	}
	return threads
}

// OpenInput opens path for reading. "-" is stdin (never closed), and a
// ".gz" suffix is decompressed transparently.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}

// IsStdin reports whether path names standard input.
func IsStdin(path string) bool { return path == "-" }
