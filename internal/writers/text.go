// internal/writers/text.go
package writers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"annotree/pkg/api"
)

// TextHeader names the columns of the text format.
const TextHeader = "# sequence\talign\tblock\tset\tfeature\tstart\tend\tstrand\tmode\tscore"

// WriteTreeText prints one tab-separated line per feature. Empty sets,
// blocks and alignments print nothing.
func WriteTreeText(w io.Writer, t api.TreeV1) error {
	for _, al := range t.Alignments {
		for _, b := range al.Blocks {
			for _, s := range b.Sets {
				for _, f := range s.Features {
					_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
						t.Sequence, al.ID, b.ID, s.ID, f.Name,
						f.Start, f.End, f.Strand, f.Mode,
						strconv.FormatFloat(f.Score, 'g', -1, 64),
					)
					if err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// StreamTreeText renders trees as they arrive.
func StreamTreeText(w io.Writer, in <-chan api.TreeV1, header, flush bool) error {
	bw := bufio.NewWriter(w)
	var err error
	if header {
		_, err = fmt.Fprintln(bw, TextHeader)
	}
	for t := range in {
		if err != nil {
			continue // keep draining so senders never block
		}
		if err = WriteTreeText(bw, t); err == nil && flush {
			err = bw.Flush()
		}
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}
