package feature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTree makes context "chr1" with alignment A, block B, set "exons" and
// the named features at consecutive 100bp spans.
func buildTree(t *testing.T, names ...string) (*Context, *FeatureSet) {
	t.Helper()
	ctx := NewContext("chr1", Span{1, 10000})
	al := NewAlignment("A", Span{1, 10000})
	require.NoError(t, ctx.AddChild(al))
	require.NoError(t, ctx.SetMaster(al))
	b := NewBlock("B", Mapping{Parent: Span{1, 10000}, Block: Span{1, 10000}})
	require.NoError(t, al.AddChild(b))
	fs := NewFeatureSet("exons")
	require.NoError(t, b.AddChild(fs))
	for i, n := range names {
		f := NewFeature(n, Span{i*100 + 1, i*100 + 50}, StrandForward, nil)
		require.NoError(t, fs.AddChild(f))
	}
	return ctx, fs
}

func featureNames(fs *FeatureSet) []string {
	var out []string
	for _, f := range fs.Features() {
		out = append(out, f.Name())
	}
	return out
}

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("F%d", i)
	}
	return out
}
