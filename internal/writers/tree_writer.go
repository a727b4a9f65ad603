// internal/writers/tree_writer.go
package writers

import (
	"bufio"
	"io"

	"annotree/internal/jsonutil"
	"annotree/internal/pretty"
	"annotree/pkg/api"
)

func init() {
	RegisterTree(FormatText, func(w io.Writer, args TreeArgs) error {
		return StreamTreeText(w, args.In, args.Header, args.Flush)
	})

	// JSON array, written once every tree has arrived
	RegisterTree(FormatJSON, func(w io.Writer, args TreeArgs) error {
		list := make([]api.TreeV1, 0, 8)
		for t := range args.In {
			list = append(list, t)
		}
		return jsonutil.EncodePretty(w, list)
	})

	RegisterTree(FormatPretty, func(w io.Writer, args TreeArgs) error {
		bw := bufio.NewWriter(w)
		var err error
		for t := range args.In {
			if err != nil {
				continue // keep draining so senders never block
			}
			if _, err = io.WriteString(bw, pretty.RenderTree(t)); err == nil && args.Flush {
				err = bw.Flush()
			}
		}
		if err != nil {
			return err
		}
		return bw.Flush()
	})

	RegisterTree(FormatJSONL, func(w io.Writer, args TreeArgs) error {
		pipe, done := StartTreeJSONLWriter(w, 64, args.Flush)
		for t := range args.In {
			pipe <- t
		}
		close(pipe)
		return <-done
	})
}

// StartTreeWriter spins up a writer goroutine rendering trees in format.
// An unknown format drains the input and reports the error.
func StartTreeWriter(out io.Writer, format string, header, flush bool, bufSize int) (chan<- api.TreeV1, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan api.TreeV1, bufSize)
	errCh := make(chan error, 1)

	go func() {
		if _, ok := TreeWriters[format]; !ok {
			for range in {
			}
		}
		errCh <- WriteTrees(format, out, TreeArgs{Header: header, Flush: flush, In: in})
	}()
	return in, errCh
}
