package merge

import (
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"annotree/internal/feature"
)

type set struct {
	align, block, name string
	feats              []string
}

func exons(feats ...string) set { return set{"A", "B", "exons", feats} }

func spanOf(name string) feature.Span {
	k, _ := strconv.Atoi(name[1:])
	return feature.Span{X1: k * 100, X2: k*100 + 50}
}

// tree builds context chr1 holding the given sets; alignment "A", when
// present, becomes the master.
func tree(t *testing.T, sets ...set) *feature.Context {
	t.Helper()
	ctx := feature.NewContext("chr1", feature.Span{X1: 1, X2: 10000})
	for _, s := range sets {
		al := ctx.Alignment(feature.AlignID(s.align))
		if al == nil {
			al = feature.NewAlignment(s.align, ctx.ParentSpan)
			require.NoError(t, ctx.AddChild(al))
			if s.align == "A" {
				require.NoError(t, ctx.SetMaster(al))
			}
		}
		b := al.Block(feature.SetID(s.block))
		if b == nil {
			b = feature.NewBlock(s.block, feature.Mapping{Parent: ctx.ParentSpan, Block: ctx.ParentSpan})
			require.NoError(t, al.AddChild(b))
		}
		fs := feature.NewFeatureSet(s.name)
		require.NoError(t, b.AddChild(fs))
		for _, f := range s.feats {
			require.NoError(t, fs.AddChild(feature.NewFeature(f, spanOf(f), feature.StrandForward, nil)))
		}
	}
	return ctx
}

func setOf(ctx *feature.Context, align, block, name string) *feature.FeatureSet {
	al := ctx.Alignment(feature.AlignID(align))
	if al == nil {
		return nil
	}
	b := al.Block(feature.SetID(block))
	if b == nil {
		return nil
	}
	return b.FeatureSet(feature.SetID(name))
}

// featureKeys lists "align/block/set/feature" for every feature under ctx.
func featureKeys(t *testing.T, ctx *feature.Context) []string {
	t.Helper()
	var out []string
	err := feature.Execute(ctx, feature.ExecConfig{
		Stop: feature.LevelFeature,
		Pre: func(n feature.Node) (feature.Verdict, error) {
			if f, ok := n.(*feature.Feature); ok {
				out = append(out, pathKey(ctx, f))
			}
			return feature.OK, nil
		},
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

// pathKey uses the traversal position, not parent pointers, because diff
// trees borrow nodes whose parents live elsewhere.
func pathKey(ctx *feature.Context, f *feature.Feature) string {
	for _, al := range ctx.Alignments() {
		for _, b := range al.Blocks() {
			for _, fs := range b.FeatureSets() {
				if fs.Feature(f.ID()) == f {
					return string(al.ID()) + "/" + string(b.ID()) + "/" + string(fs.ID()) + "/" + f.Name()
				}
			}
		}
	}
	return "?/" + f.Name()
}
