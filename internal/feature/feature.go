package feature

import (
	"fmt"
	"slices"
)

// Mode selects the kind of detail a Feature carries.
type Mode uint8

const (
	ModeBasic Mode = iota
	ModeTranscript
	ModeAlignment
	ModeSequence
	ModeAssemblyPath
)

var modeNames = [...]string{
	ModeBasic:        "basic",
	ModeTranscript:   "transcript",
	ModeAlignment:    "alignment",
	ModeSequence:     "sequence",
	ModeAssemblyPath: "assembly-path",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeBasic, nil
	}
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return ModeBasic, fmt.Errorf("%w: unknown feature mode %q", ErrArgument, s)
}

// Detail is the mode-specific part of a Feature.
type Detail interface {
	Mode() Mode
	clone() Detail
}

type Basic struct{}

func (Basic) Mode() Mode { return ModeBasic }

func (Basic) clone() Detail { return Basic{} }

// Transcript holds exon and intron spans in ascending order, plus an
// optional coding region.
type Transcript struct {
	Exons   []Span
	Introns []Span
	CDS     *Span
}

func (*Transcript) Mode() Mode { return ModeTranscript }

func (t *Transcript) clone() Detail {
	c := &Transcript{Exons: slices.Clone(t.Exons), Introns: slices.Clone(t.Introns)}
	if t.CDS != nil {
		cds := *t.CDS
		c.CDS = &cds
	}
	return c
}

// AlignBlock is one gapless piece of a homology alignment: query
// coordinates Q and target (reference) coordinates T.
type AlignBlock struct {
	Q       Span
	T       Span
	QStrand Strand
	TStrand Strand
}

// Homology is a match of a query sequence against the reference.
type Homology struct {
	Query    Span
	Blocks   []AlignBlock
	Sequence []byte
}

func (*Homology) Mode() Mode { return ModeAlignment }

func (h *Homology) clone() Detail {
	return &Homology{Query: h.Query, Blocks: slices.Clone(h.Blocks), Sequence: slices.Clone(h.Sequence)}
}

// Sequence marks a feature that displays the reference DNA or its
// translation.
type Sequence struct {
	Peptide bool
}

func (*Sequence) Mode() Mode { return ModeSequence }

func (s *Sequence) clone() Detail { c := *s; return &c }

// AssemblyPath lists the component spans an assembly is built from.
type AssemblyPath struct {
	Path []Span
}

func (*AssemblyPath) Mode() Mode { return ModeAssemblyPath }

func (p *AssemblyPath) clone() Detail { return &AssemblyPath{Path: slices.Clone(p.Path)} }

// Feature is a leaf: one annotation on the reference.
type Feature struct {
	Any

	Span   Span
	Strand Strand
	Score  float64
	Style  *Style
	Detail Detail
}

// NewFeature builds a feature whose id is derived from name, strand, span
// and, for homology features, the query span.
func NewFeature(name string, span Span, strand Strand, d Detail) *Feature {
	if d == nil {
		d = Basic{}
	}
	var q Span
	if h, ok := d.(*Homology); ok {
		q = h.Query
	}
	f := &Feature{Span: span, Strand: strand, Detail: d}
	f.init(f, LevelFeature, name, FeatureID(d.Mode(), name, strand, span, q))
	return f
}

func (f *Feature) AsAny() *Any {
	if f == nil {
		return nil
	}
	return &f.Any
}

func (f *Feature) Mode() Mode {
	if f.Detail == nil {
		return ModeBasic
	}
	return f.Detail.Mode()
}

func (f *Feature) FeatureSet() *FeatureSet {
	fs, _ := f.parent.(*FeatureSet)
	return fs
}

// Transcript returns the transcript detail, or nil for other modes.
func (f *Feature) Transcript() *Transcript {
	t, _ := f.Detail.(*Transcript)
	return t
}

func (f *Feature) Homology() *Homology {
	h, _ := f.Detail.(*Homology)
	return h
}

func (f *Feature) AssemblyPath() *AssemblyPath {
	p, _ := f.Detail.(*AssemblyPath)
	return p
}
