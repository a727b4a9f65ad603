// Package pretty draws feature trees as indented ASCII, one track per
// feature scaled to the tree's span.
package pretty

import (
	"fmt"
	"strings"

	"annotree/pkg/api"
)

// Options control the ASCII rendering.
type Options struct {
	// Track width in columns. If <=0, use default (60).
	Width int

	// Glyphs
	DotGlyph    byte // uncovered
	BarGlyph    byte // feature body
	ExonGlyph   byte
	IntronGlyph byte
	FwdGlyph    byte // drawn on the 3' end of forward features
	RevGlyph    byte // drawn on the 3' end of reverse features
}

// DefaultOptions is the look of --output pretty.
var DefaultOptions = Options{
	Width:       60,
	DotGlyph:    '.',
	BarGlyph:    '=',
	ExonGlyph:   '#',
	IntronGlyph: '-',
	FwdGlyph:    '>',
	RevGlyph:    '<',
}

// RenderTree renders t with DefaultOptions.
func RenderTree(t api.TreeV1) string { return RenderTreeWithOptions(t, DefaultOptions) }

func RenderTreeWithOptions(t api.TreeV1, o Options) string {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d-%d", t.Sequence, t.Start, t.End)
	if t.Diff {
		b.WriteString(" (diff)")
	}
	b.WriteByte('\n')
	for _, al := range t.Alignments {
		fmt.Fprintf(&b, "  %s %d-%d\n", al.Name, al.Start, al.End)
		for _, blk := range al.Blocks {
			fmt.Fprintf(&b, "    %s %d-%d -> %d-%d", blk.Name, blk.Start, blk.End, blk.BlockStart, blk.BlockEnd)
			if blk.Revcomped {
				b.WriteString(" revcomped")
			}
			b.WriteByte('\n')
			for _, s := range blk.Sets {
				fmt.Fprintf(&b, "      %s (%d)\n", s.Name, len(s.Features))
				writeFeatures(&b, s.Features, t.Start, t.End, o)
			}
		}
	}
	return b.String()
}

func writeFeatures(b *strings.Builder, feats []api.FeatureV1, lo, hi int, o Options) {
	nameW, rangeW := 0, 0
	ranges := make([]string, len(feats))
	for i, f := range feats {
		ranges[i] = fmt.Sprintf("%d-%d", f.Start, f.End)
		nameW = max(nameW, len(f.Name))
		rangeW = max(rangeW, len(ranges[i]))
	}
	for i, f := range feats {
		fmt.Fprintf(b, "        %-*s %s %-*s [%s]\n", nameW, f.Name, f.Strand, rangeW, ranges[i], Track(f, lo, hi, o))
	}
}

// Track draws f on a line of o.Width columns covering lo..hi.
func Track(f api.FeatureV1, lo, hi int, o Options) string {
	w := o.Width
	if w <= 0 {
		w = DefaultOptions.Width
	}
	cells := []byte(strings.Repeat(string(o.DotGlyph), w))
	col := func(x int) int {
		if hi < lo {
			return 0
		}
		c := (x - lo) * w / (hi - lo + 1)
		return min(max(c, 0), w-1)
	}
	paint := func(s, e int, g byte) {
		for c := col(s); c <= col(e); c++ {
			cells[c] = g
		}
	}

	if len(f.Exons) > 0 {
		for _, in := range f.Introns {
			paint(in[0], in[1], o.IntronGlyph)
		}
		for _, ex := range f.Exons {
			paint(ex[0], ex[1], o.ExonGlyph)
		}
	} else {
		paint(f.Start, f.End, o.BarGlyph)
	}
	switch f.Strand {
	case "+":
		cells[col(f.End)] = o.FwdGlyph
	case "-":
		cells[col(f.Start)] = o.RevGlyph
	}
	return string(cells)
}
