// Package revcomp reverse complements a feature context in place: every
// coordinate is reflected about the context's parent span, strands are
// swapped and reference DNA is reverse complemented.
package revcomp

import (
	"fmt"
	"slices"

	"annotree/internal/feature"
)

// Frame reflects coordinates about a closed span [Lo, Hi].
type Frame struct {
	Lo, Hi int
}

// FrameOf returns the frame of ctx, which is its parent span.
func FrameOf(ctx *feature.Context) (Frame, error) {
	if ctx == nil || !ctx.Valid() {
		return Frame{}, fmt.Errorf("%w: revcomp: invalid context", feature.ErrArgument)
	}
	if !ctx.ParentSpan.Valid() {
		return Frame{}, fmt.Errorf("%w: revcomp: context %q has no parent span", feature.ErrArgument, ctx.ID())
	}
	return Frame{Lo: ctx.ParentSpan.X1, Hi: ctx.ParentSpan.X2}, nil
}

// Flip reflects one coordinate so that Lo and Hi trade places. Applying it
// twice is the identity.
//
// The reflection is Lo+Hi-c, so [1,10] in a [1,100] frame becomes [91,100].
// This is hi-c+1 for a 1-based frame. It is not (Lo+Hi+1)-c, which would
// map Lo to Hi+1, one past the end of the frame.
func (fr Frame) Flip(c int) int { return fr.Lo + fr.Hi - c }

// Span reflects s, swapping its ends so that X1 <= X2 still holds.
func (fr Frame) Span(s feature.Span) feature.Span {
	return feature.Span{X1: fr.Flip(s.X2), X2: fr.Flip(s.X1)}
}

// Spans reflects each span in place and reverses the slice, which keeps an
// ascending list ascending.
func (fr Frame) Spans(list []feature.Span) {
	for i := range list {
		list[i] = fr.Span(list[i])
	}
	slices.Reverse(list)
}

// Context reverse complements ctx and everything below it. The parent span
// itself is unchanged; each Block's Revcomped flag toggles.
func Context(ctx *feature.Context) error {
	fr, err := FrameOf(ctx)
	if err != nil {
		return err
	}
	return feature.Execute(ctx, feature.ExecConfig{
		Stop: feature.LevelFeature,
		Pre: func(n feature.Node) (feature.Verdict, error) {
			fr.node(n)
			return feature.OK, nil
		},
	})
}

// Feature reverse complements a single feature within ctx's frame.
func Feature(ctx *feature.Context, f *feature.Feature) error {
	fr, err := FrameOf(ctx)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("%w: revcomp: nil feature", feature.ErrArgument)
	}
	fr.feature(f)
	return nil
}

// Coords reflects a bare coordinate pair within ctx's frame.
func Coords(ctx *feature.Context, x1, x2 int) (int, int, error) {
	fr, err := FrameOf(ctx)
	if err != nil {
		return x1, x2, err
	}
	s := fr.Span(feature.Span{X1: min(x1, x2), X2: max(x1, x2)})
	return s.X1, s.X2, nil
}

func (fr Frame) node(n feature.Node) {
	switch n := n.(type) {
	case *feature.Alignment:
		n.SequenceSpan = fr.Span(n.SequenceSpan)
	case *feature.Block:
		n.Mapping.Block = fr.Span(n.Mapping.Block)
		n.Revcomped = !n.Revcomped
		feature.ReverseComplement(n.DNA)
	case *feature.FeatureSet:
		fr.Spans(n.Loaded)
	case *feature.Feature:
		fr.feature(n)
	}
}

func (fr Frame) feature(f *feature.Feature) {
	f.Span = fr.Span(f.Span)
	f.Strand = f.Strand.Flip()
	switch d := f.Detail.(type) {
	case *feature.Transcript:
		fr.Spans(d.Exons)
		fr.Spans(d.Introns)
		if d.CDS != nil {
			*d.CDS = fr.Span(*d.CDS)
		}
	case *feature.Homology:
		for i := range d.Blocks {
			b := &d.Blocks[i]
			b.T = fr.Span(b.T)
			b.TStrand = b.TStrand.Flip()
		}
		slices.Reverse(d.Blocks)
		feature.ReverseComplement(d.Sequence)
	case *feature.AssemblyPath:
		fr.Spans(d.Path)
	}
}
