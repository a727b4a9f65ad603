// internal/appcore/writer_factories.go
package appcore

import (
	"fmt"
	"io"
	"os"

	"annotree/internal/writers"
	"annotree/pkg/api"
)

// TreeWriterFactory starts the writer for rendered trees.
type TreeWriterFactory struct {
	Format string
	Header bool
	Flush  bool
}

func NewTreeWriterFactory(format string, header, flush bool) TreeWriterFactory {
	return TreeWriterFactory{Format: format, Header: header, Flush: flush}
}

func (w TreeWriterFactory) Start(out io.Writer, bufSize int) (chan<- api.TreeV1, <-chan error) {
	return writers.StartTreeWriter(out, w.Format, w.Header, w.Flush, bufSize)
}

// EventWriterFactory starts the JSONL change-event writer. Path "-" is
// stderr; any other path is appended to.
type EventWriterFactory struct {
	Path  string
	Flush bool
}

func NewEventWriterFactory(path string, flush bool) EventWriterFactory {
	return EventWriterFactory{Path: path, Flush: flush}
}

// Start opens the destination. The returned close func waits for the
// writer and releases the file.
func (w EventWriterFactory) Start(stderr io.Writer, bufSize int) (chan<- api.EventV1, func() error, error) {
	var out io.Writer = stderr
	var fh *os.File
	if w.Path != "-" {
		var err error
		fh, err = os.OpenFile(w.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("events: %w", err)
		}
		out = fh
	}
	in, done := writers.StartEventWriter(out, bufSize, w.Flush)
	closeFn := func() error {
		close(in)
		err := <-done
		if fh != nil {
			if cerr := fh.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}
	return in, closeFn, nil
}
