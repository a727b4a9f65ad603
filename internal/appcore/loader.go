// internal/appcore/loader.go
package appcore

import (
	"fmt"
	"strings"

	"annotree/internal/fasta"
	"annotree/internal/feature"
	"annotree/internal/fragment"
	"annotree/internal/pipeline"
)

// Loader reads fragment files and attaches reference DNA to their blocks.
// It is safe for concurrent use.
type Loader struct {
	Styles *fragment.Styles
	dna    map[string]fasta.Record
}

var _ pipeline.Loader = (*Loader)(nil)

// NewLoader reads the FASTA file at dnaPath (if any) once, up front.
func NewLoader(dnaPath string) (*Loader, error) {
	l := &Loader{Styles: fragment.NewStyles()}
	if dnaPath == "" {
		return l, nil
	}
	recs, err := fasta.ReadAll(dnaPath)
	if err != nil {
		return nil, err
	}
	l.dna = make(map[string]fasta.Record, len(recs))
	for _, r := range recs {
		l.dna[strings.ToLower(r.ID)] = r
	}
	return l, nil
}

func (l *Loader) Load(path string) ([]*feature.Context, error) {
	ctxs, err := fragment.LoadFile(path, l.Styles)
	if err != nil {
		return nil, err
	}
	for _, c := range ctxs {
		if err := l.Attach(c); err != nil {
			pipeline.DestroyAll(ctxs)
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return ctxs, nil
}

// Attach fills the blocks of ctx that carry no DNA from the record named
// like ctx's sequence. Sequences without a record are left alone.
func (l *Loader) Attach(ctx *feature.Context) error {
	rec, ok := l.dna[strings.ToLower(ctx.Sequence)]
	if !ok {
		return nil
	}
	_, err := fasta.AttachRecord(ctx, rec)
	return err
}

// LoadView reads the starting view. The file must hold exactly one
// document.
func (l *Loader) LoadView(path string) (*feature.Context, error) {
	ctxs, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	if len(ctxs) != 1 {
		pipeline.DestroyAll(ctxs)
		return nil, fmt.Errorf("%w: view %s: want one document, got %d", feature.ErrArgument, path, len(ctxs))
	}
	return ctxs[0], nil
}
