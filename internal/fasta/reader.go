// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"annotree/internal/runutil"
)

// Record is one FASTA entry. Seq is upper-cased.
type Record struct {
	ID  string
	Seq []byte
}

// Stream reads records from path ("-" for stdin, ".gz" gunzipped) on a
// goroutine. The channel is closed at end of input; a read error ends the
// stream early and is reported by the returned func once the channel is
// drained.
func Stream(path string) (<-chan Record, func() error, error) {
	rc, err := runutil.OpenInput(path)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan Record, 4)
	var rerr error

	go func() {
		defer rc.Close()
		defer close(out)
		rerr = scan(rc, func(r Record) bool {
			out <- r
			return true
		})
	}()
	return out, func() error { return rerr }, nil
}

// ReadAll loads every record of path.
func ReadAll(path string) ([]Record, error) {
	rc, err := runutil.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var recs []Record
	err = scan(rc, func(r Record) bool {
		recs = append(recs, r)
		return true
	})
	return recs, err
}

// Lookup returns the first record of path whose ID matches id
// case-insensitively.
func Lookup(path, id string) (Record, error) {
	rc, err := runutil.OpenInput(path)
	if err != nil {
		return Record{}, err
	}
	defer rc.Close()
	var (
		hit   Record
		found bool
	)
	err = scan(rc, func(r Record) bool {
		if strings.EqualFold(r.ID, id) {
			hit, found = r, true
			return false
		}
		return true
	})
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, fmt.Errorf("%s: no sequence %q", path, id)
	}
	return hit, nil
}

// scan calls emit for each record until emit returns false.
func scan(rd io.Reader, emit func(Record) bool) error {
	r := bufio.NewReader(rd)
	var (
		id  string
		buf []byte
	)
	flush := func() bool {
		if id == "" {
			return true
		}
		return emit(Record{ID: id, Seq: bytes.Clone(buf)})
	}
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return err
		}
		eof := err == io.EOF
		line = bytes.TrimRight(line, "\r\n")
		switch {
		case len(line) > 0 && line[0] == '>':
			if !flush() {
				return nil
			}
			fields := strings.Fields(string(line[1:]))
			if len(fields) == 0 {
				return fmt.Errorf("fasta: empty header")
			}
			id = fields[0]
			buf = buf[:0]
		case len(line) > 0:
			if id == "" {
				return fmt.Errorf("fasta: sequence before first header")
			}
			buf = append(buf, bytes.ToUpper(line)...)
		}
		if eof {
			flush()
			return nil
		}
	}
}
