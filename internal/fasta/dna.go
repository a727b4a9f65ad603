// internal/fasta/dna.go
package fasta

import (
	"fmt"

	"annotree/internal/feature"
	"annotree/internal/logx"
)

// AttachDNA fills in reference DNA for every block of ctx that has none,
// slicing the record named ctx.Sequence over each block's parent span.
// Blocks that already carry DNA keep it. It returns the number of blocks
// filled.
func AttachDNA(ctx *feature.Context, path string) (int, error) {
	if ctx == nil || !ctx.Valid() {
		return 0, fmt.Errorf("%w: attach dna: invalid context", feature.ErrArgument)
	}
	rec, err := Lookup(path, ctx.Sequence)
	if err != nil {
		return 0, err
	}
	return AttachRecord(ctx, rec)
}

// AttachRecord is AttachDNA for a record already in memory.
func AttachRecord(ctx *feature.Context, rec Record) (int, error) {
	n := 0
	for _, al := range ctx.Alignments() {
		for _, b := range al.Blocks() {
			if b.HasDNA() {
				continue
			}
			p := b.Mapping.Parent
			if p.X1 < 1 || p.X2 > len(rec.Seq) || !p.Valid() {
				return n, fmt.Errorf("%w: block %q span %s outside %s (length %d)",
					feature.ErrArgument, b.ID(), p, rec.ID, len(rec.Seq))
			}
			b.DNA = append([]byte(nil), rec.Seq[p.X1-1:p.X2]...)
			if b.Revcomped {
				feature.ReverseComplement(b.DNA)
			}
			n++
		}
	}
	logx.Logger().Debug("attached dna", "sequence", ctx.Sequence, "blocks", n)
	return n, nil
}
