// internal/fragment/decode.go
package fragment

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"annotree/internal/feature"
	"annotree/internal/runutil"
)

// Decode reads one fragment document from r and builds its tree.
func Decode(r io.Reader, styles *Styles) (*feature.Context, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: fragment: %v", feature.ErrArgument, err)
	}
	return Build(doc, styles)
}

// DecodeAll reads every document of a multi-document YAML stream. On error
// the trees built so far are destroyed.
func DecodeAll(r io.Reader, styles *Styles) ([]*feature.Context, error) {
	dec := yaml.NewDecoder(r)
	var out []*feature.Context
	for i := 0; ; i++ {
		var doc Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err == nil {
			var ctx *feature.Context
			if ctx, err = Build(doc, styles); err == nil {
				out = append(out, ctx)
				continue
			}
		} else {
			err = fmt.Errorf("%w: %v", feature.ErrArgument, err)
		}
		for _, c := range out {
			feature.Destroy(c)
		}
		return nil, fmt.Errorf("fragment document %d: %w", i+1, err)
	}
}

// LoadFile decodes every document in path ("-" is stdin, ".gz" is
// gunzipped).
func LoadFile(path string, styles *Styles) ([]*feature.Context, error) {
	rc, err := runutil.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	ctxs, err := DecodeAll(rc, styles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ctxs, nil
}

// Build turns a decoded document into a checked feature tree. When the
// document has no master key the first alignment is the master.
func Build(doc Document, styles *Styles) (*feature.Context, error) {
	if styles == nil {
		styles = NewStyles()
	}
	if doc.Sequence == "" {
		return nil, fmt.Errorf("%w: fragment has no sequence", feature.ErrArgument)
	}
	span, err := spanOf(doc.Span, "span")
	if err != nil {
		return nil, err
	}
	for _, sd := range doc.Styles {
		if _, err := styles.Define(sd); err != nil {
			return nil, err
		}
	}

	ctx := feature.NewContext(doc.Sequence, span)
	for _, name := range doc.Requested {
		ctx.AddRequested(feature.SetID(name))
	}
	b := builder{ctx: ctx, styles: styles}
	for _, ad := range doc.Aligns {
		if err := b.align(ad); err != nil {
			feature.Destroy(ctx)
			return nil, err
		}
	}

	switch {
	case doc.Master != nil && *doc.Master != "":
		al := ctx.Alignment(feature.AlignID(*doc.Master))
		if al == nil {
			feature.Destroy(ctx)
			return nil, fmt.Errorf("%w: master alignment %q not in fragment", feature.ErrNotFound, *doc.Master)
		}
		_ = ctx.SetMaster(al)
	case doc.Master == nil:
		if als := ctx.Alignments(); len(als) > 0 {
			_ = ctx.SetMaster(als[0])
		}
	}

	if err := feature.Check(ctx); err != nil {
		feature.Destroy(ctx)
		return nil, err
	}
	return ctx, nil
}

type builder struct {
	ctx    *feature.Context
	styles *Styles
}

func (b builder) align(ad AlignDoc) error {
	span := b.ctx.ParentSpan
	if len(ad.Span) > 0 {
		var err error
		if span, err = spanOf(ad.Span, "alignment span"); err != nil {
			return err
		}
	}
	al := feature.NewAlignment(ad.Name, span)
	if err := b.ctx.AddChild(al); err != nil {
		return fmt.Errorf("alignment %q: %w", ad.Name, err)
	}
	for _, bd := range ad.Blocks {
		if err := b.block(al, bd); err != nil {
			return fmt.Errorf("alignment %q: %w", ad.Name, err)
		}
	}
	return nil
}

func (b builder) block(al *feature.Alignment, bd BlockDoc) error {
	m := feature.Mapping{Parent: b.ctx.ParentSpan, Reversed: bd.Reversed}
	var err error
	if len(bd.Parent) > 0 {
		if m.Parent, err = spanOf(bd.Parent, "block parent"); err != nil {
			return err
		}
	}
	m.Block = m.Parent
	if len(bd.Block) > 0 {
		if m.Block, err = spanOf(bd.Block, "block"); err != nil {
			return err
		}
	}
	blk := feature.NewBlock(bd.Name, m)
	if bd.DNA != "" {
		if len(bd.DNA) != m.Parent.Len() {
			return fmt.Errorf("%w: block %q: dna length %d does not match parent span %s",
				feature.ErrArgument, blk.Name(), len(bd.DNA), m.Parent)
		}
		blk.DNA = []byte(bd.DNA)
	}
	if err := al.AddChild(blk); err != nil {
		return fmt.Errorf("block %q: %w", blk.Name(), err)
	}
	for _, sd := range bd.Sets {
		if err := b.set(blk, sd); err != nil {
			return fmt.Errorf("block %q: %w", blk.Name(), err)
		}
	}
	return nil
}

func (b builder) set(blk *feature.Block, sd SetDoc) error {
	fs := feature.NewFeatureSet(sd.Name)
	styleName := sd.Style
	if styleName == "" {
		styleName = sd.Name
	}
	mode := feature.ModeBasic
	if len(sd.Features) > 0 {
		var err error
		if mode, err = feature.ParseMode(sd.Features[0].Mode); err != nil {
			return err
		}
	}
	fs.Style = b.styles.Get(styleName, mode)

	for _, l := range sd.Loaded {
		s, err := spanOf(l, "loaded")
		if err != nil {
			return fmt.Errorf("set %q: %w", sd.Name, err)
		}
		fs.AddLoaded(s)
	}
	if err := blk.AddChild(fs); err != nil {
		return fmt.Errorf("set %q: %w", sd.Name, err)
	}
	for _, fd := range sd.Features {
		f, err := newFeature(fd)
		if err != nil {
			return fmt.Errorf("set %q: %w", sd.Name, err)
		}
		f.Style = fs.Style
		if err := fs.AddChild(f); err != nil {
			return fmt.Errorf("set %q: feature %q: %w", sd.Name, fd.Name, err)
		}
	}
	return nil
}

func newFeature(fd FeatureDoc) (*feature.Feature, error) {
	span, err := spanOf(fd.Span, "feature "+fd.Name)
	if err != nil {
		return nil, err
	}
	strand, err := feature.ParseStrand(fd.Strand)
	if err != nil {
		return nil, err
	}
	mode, err := feature.ParseMode(fd.Mode)
	if err != nil {
		return nil, err
	}
	d, err := detail(mode, fd)
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", fd.Name, err)
	}
	f := feature.NewFeature(fd.Name, span, strand, d)
	f.Score = fd.Score
	return f, nil
}

func detail(mode feature.Mode, fd FeatureDoc) (feature.Detail, error) {
	switch mode {
	case feature.ModeTranscript:
		t := &feature.Transcript{}
		var err error
		if t.Exons, err = spansOf(fd.Exons, "exons"); err != nil {
			return nil, err
		}
		if t.Introns, err = spansOf(fd.Introns, "introns"); err != nil {
			return nil, err
		}
		if len(fd.CDS) > 0 {
			cds, err := spanOf(fd.CDS, "cds")
			if err != nil {
				return nil, err
			}
			t.CDS = &cds
		}
		return t, nil
	case feature.ModeAlignment:
		h := &feature.Homology{}
		if len(fd.Query) > 0 {
			q, err := spanOf(fd.Query, "query")
			if err != nil {
				return nil, err
			}
			h.Query = q
		}
		for _, bd := range fd.Blocks {
			ab, err := alignBlock(bd)
			if err != nil {
				return nil, err
			}
			h.Blocks = append(h.Blocks, ab)
		}
		if fd.Sequence != "" {
			h.Sequence = []byte(fd.Sequence)
		}
		return h, nil
	case feature.ModeSequence:
		return &feature.Sequence{Peptide: fd.Peptide}, nil
	case feature.ModeAssemblyPath:
		path, err := spansOf(fd.Path, "path")
		if err != nil {
			return nil, err
		}
		return &feature.AssemblyPath{Path: path}, nil
	}
	return feature.Basic{}, nil
}

func alignBlock(bd AlignBlockDoc) (feature.AlignBlock, error) {
	var ab feature.AlignBlock
	var err error
	if ab.Q, err = spanOf(bd.Q, "align block q"); err != nil {
		return ab, err
	}
	if ab.T, err = spanOf(bd.T, "align block t"); err != nil {
		return ab, err
	}
	if ab.QStrand, err = feature.ParseStrand(bd.QStrand); err != nil {
		return ab, err
	}
	if ab.TStrand, err = feature.ParseStrand(bd.TStrand); err != nil {
		return ab, err
	}
	return ab, nil
}

func spanOf(v []int, what string) (feature.Span, error) {
	if len(v) != 2 {
		return feature.Span{}, fmt.Errorf("%w: %s: want [start, end], got %v", feature.ErrArgument, what, v)
	}
	s := feature.Span{X1: v[0], X2: v[1]}
	if !s.Valid() {
		return feature.Span{}, fmt.Errorf("%w: %s: start %d after end %d", feature.ErrArgument, what, s.X1, s.X2)
	}
	return s, nil
}

func spansOf(vs [][]int, what string) ([]feature.Span, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]feature.Span, 0, len(vs))
	for _, v := range vs {
		s, err := spanOf(v, what)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
