// internal/writers/tree.go
package writers

import (
	"annotree/internal/feature"
	"annotree/pkg/api"
)

// ToAPI snapshots ctx into the wire schema. Diff contexts are walked through
// their own child tables, so borrowed nodes appear where the diff placed
// them. The result shares no memory with ctx.
func ToAPI(ctx *feature.Context) api.TreeV1 {
	t := api.TreeV1{
		Sequence:   ctx.Sequence,
		Start:      ctx.ParentSpan.X1,
		End:        ctx.ParentSpan.X2,
		Diff:       ctx.IsDiff(),
		Requested:  idStrings(ctx.RequestedSets),
		Sources:    idStrings(ctx.SourceSets),
		Alignments: []api.AlignV1{},
	}
	if ctx.MasterAlign != nil {
		t.Master = string(ctx.MasterAlign.ID())
	}

	var (
		al  *api.AlignV1
		blk *api.BlockV1
		set *api.SetV1
	)
	_ = feature.Execute(ctx, feature.ExecConfig{
		Stop: feature.LevelFeature,
		Pre: func(n feature.Node) (feature.Verdict, error) {
			switch n := n.(type) {
			case *feature.Alignment:
				t.Alignments = append(t.Alignments, api.AlignV1{
					ID: string(n.ID()), Name: n.Name(),
					Start: n.SequenceSpan.X1, End: n.SequenceSpan.X2,
					Blocks: []api.BlockV1{},
				})
				al = &t.Alignments[len(t.Alignments)-1]
			case *feature.Block:
				al.Blocks = append(al.Blocks, blockV1(n))
				blk = &al.Blocks[len(al.Blocks)-1]
			case *feature.FeatureSet:
				blk.Sets = append(blk.Sets, setV1(n))
				set = &blk.Sets[len(blk.Sets)-1]
			case *feature.Feature:
				set.Features = append(set.Features, FeatureToAPI(n))
			}
			return feature.OK, nil
		},
	})
	return t
}

func blockV1(b *feature.Block) api.BlockV1 {
	return api.BlockV1{
		ID: string(b.ID()), Name: b.Name(),
		Start: b.Mapping.Parent.X1, End: b.Mapping.Parent.X2,
		BlockStart: b.Mapping.Block.X1, BlockEnd: b.Mapping.Block.X2,
		Reversed:  b.Mapping.Reversed,
		Revcomped: b.Revcomped,
		DNA:       string(b.DNA),
		Sets:      []api.SetV1{},
	}
}

func setV1(fs *feature.FeatureSet) api.SetV1 {
	s := api.SetV1{
		ID: string(fs.ID()), Name: fs.Name(),
		Loaded:   pairs(fs.Loaded),
		Features: []api.FeatureV1{},
	}
	if fs.Style != nil {
		s.Style = fs.Style.Name
	}
	return s
}

// FeatureToAPI converts a single feature.
func FeatureToAPI(f *feature.Feature) api.FeatureV1 {
	out := api.FeatureV1{
		ID: string(f.ID()), Name: f.Name(),
		Start: f.Span.X1, End: f.Span.X2,
		Strand: f.Strand.String(),
		Score:  f.Score,
		Mode:   f.Mode().String(),
	}
	switch d := f.Detail.(type) {
	case *feature.Transcript:
		out.Exons = pairs(d.Exons)
		out.Introns = pairs(d.Introns)
		if d.CDS != nil {
			out.CDS = &[2]int{d.CDS.X1, d.CDS.X2}
		}
	case *feature.Homology:
		out.Query = &[2]int{d.Query.X1, d.Query.X2}
		for _, b := range d.Blocks {
			out.Blocks = append(out.Blocks, api.AlignBlockV1{
				Q:       [2]int{b.Q.X1, b.Q.X2},
				T:       [2]int{b.T.X1, b.T.X2},
				QStrand: b.QStrand.String(),
				TStrand: b.TStrand.String(),
			})
		}
		out.Sequence = string(d.Sequence)
	case *feature.Sequence:
		out.Peptide = d.Peptide
	case *feature.AssemblyPath:
		out.Path = pairs(d.Path)
	}
	return out
}

func pairs(spans []feature.Span) [][2]int {
	if len(spans) == 0 {
		return nil
	}
	out := make([][2]int, len(spans))
	for i, s := range spans {
		out[i] = [2]int{s.X1, s.X2}
	}
	return out
}

func idStrings(ids []feature.ID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
