package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotree/internal/feature"
)

func TestMergeAddsOnlyNewFeatures(t *testing.T) {
	view := tree(t, exons("F1"))
	f1 := setOf(view, "A", "B", "exons").Features()[0]
	fresh := tree(t, exons("F1", "F2"))

	res, err := Merge(view, fresh)
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)
	assert.Same(t, view, res.View)
	assert.Equal(t, Stats{FeaturesAdded: 1}, res.Stats)

	vs := setOf(view, "A", "B", "exons")
	assert.Equal(t, 2, vs.NumChildren())
	assert.Same(t, f1, vs.Features()[0], "existing feature untouched")

	diff := res.Diff
	require.NotNil(t, diff)
	assert.True(t, diff.IsDiff())
	assert.Equal(t, []string{"a/b/exons/F2"}, featureKeys(t, diff))

	ds := setOf(diff, "A", "B", "exons")
	require.NotNil(t, ds)
	assert.True(t, diff.Owns(ds), "present ancestors are owned copies")
	assert.True(t, diff.Owns(ds.Block()))
	assert.NotSame(t, vs, ds)

	f2 := ds.Features()[0]
	assert.Same(t, vs.Feature(f2.ID()), f2, "new feature is shared with the view")
	assert.True(t, diff.Borrows(f2))
	assert.Same(t, vs, f2.Parent())

	require.NoError(t, feature.Check(view))
	require.NoError(t, feature.Check(diff))
	assert.False(t, fresh.Valid(), "fresh is consumed")
}

func TestMergeIsIdempotent(t *testing.T) {
	view := tree(t, exons("F1"))
	res, err := Merge(view, tree(t, exons("F1", "F2")))
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)
	before := featureKeys(t, view)

	again, err := Merge(view, tree(t, exons("F1", "F2")))
	require.NoError(t, err)
	assert.Equal(t, CodeNone, again.Code)
	assert.Nil(t, again.Diff)
	assert.Equal(t, Stats{}, again.Stats)
	assert.Equal(t, before, featureKeys(t, view))
}

func TestMergeIntoNilView(t *testing.T) {
	fresh := tree(t, exons("F1", "F2"), set{"C", "B", "genes", []string{"G1"}})
	res, err := Merge(nil, fresh)
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)
	assert.Same(t, fresh, res.View)
	assert.Equal(t, Stats{AlignsAdded: 2, BlocksAdded: 2, SetsAdded: 2, FeaturesAdded: 3}, res.Stats)

	diff := res.Diff
	for _, al := range fresh.Alignments() {
		assert.Same(t, al, diff.Alignment(al.ID()))
		assert.True(t, diff.Borrows(al))
	}
	assert.Same(t, fresh.MasterAlign, diff.MasterAlign)
	assert.ElementsMatch(t, []feature.ID{"exons", "genes"}, diff.SourceSets)

	feature.Destroy(diff)
	assert.True(t, fresh.Valid())
	assert.Len(t, featureKeys(t, fresh), 3)
}

func TestMergeSplicesAbsentSubtrees(t *testing.T) {
	view := tree(t, exons("F1"))
	fresh := tree(t,
		exons("F1"),
		set{"A", "B", "genes", []string{"G1", "G2"}},
		set{"C", "B2", "repeats", []string{"R1"}},
	)
	freshGenes := setOf(fresh, "A", "B", "genes")
	freshC := fresh.Alignment("c")

	res, err := Merge(view, fresh)
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)
	assert.Equal(t, Stats{AlignsAdded: 1, BlocksAdded: 1, SetsAdded: 2, FeaturesAdded: 3}, res.Stats)

	// absent subtrees are moved, not copied
	assert.Same(t, freshGenes, setOf(view, "A", "B", "genes"))
	assert.Same(t, freshC, view.Alignment("c"))
	assert.Same(t, view, freshC.Parent())

	diff := res.Diff
	assert.Same(t, freshC, diff.Alignment("c"))
	assert.True(t, diff.Borrows(freshC))
	assert.Same(t, freshGenes, setOf(diff, "A", "B", "genes"))
	assert.Equal(t, []string{
		"a/b/genes/G1", "a/b/genes/G2", "c/b2/repeats/R1",
	}, featureKeys(t, diff))
	assert.ElementsMatch(t, []feature.ID{"exons", "genes", "repeats"}, diff.SourceSets)

	require.NoError(t, feature.Check(view))
	require.NoError(t, feature.Check(diff))
}

func TestMergeDiffIsExactlyTheNewFeatures(t *testing.T) {
	view := tree(t, exons("F1", "F3"), set{"A", "B", "genes", []string{"G1"}})
	before := map[string]bool{}
	for _, k := range featureKeys(t, view) {
		before[k] = true
	}
	fresh := tree(t,
		exons("F1", "F2", "F3", "F4"),
		set{"A", "B", "genes", []string{"G1", "G2"}},
		set{"A", "B", "tss", []string{"T1"}},
		set{"D", "B", "exons", []string{"F1"}},
	)

	res, err := Merge(view, fresh)
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)

	var added []string
	for _, k := range featureKeys(t, view) {
		if !before[k] {
			added = append(added, k)
		}
	}
	assert.Equal(t, added, featureKeys(t, res.Diff))
	assert.Equal(t, len(added), res.Stats.FeaturesAdded)
	assert.Equal(t, []string{
		"a/b/exons/F2", "a/b/exons/F4", "a/b/genes/G2", "a/b/tss/T1", "d/b/exons/F1",
	}, added)
}

func TestMergeBlockDNAFirstWriterWins(t *testing.T) {
	view := tree(t, exons("F1"))
	fresh := tree(t, exons("F2"))
	fresh.Alignment("a").Block("b").DNA = []byte("ACGT")

	_, err := Merge(view, fresh)
	require.NoError(t, err)
	vb := view.Alignment("a").Block("b")
	assert.Equal(t, "ACGT", string(vb.DNA))

	later := tree(t, exons("F3"))
	later.Alignment("a").Block("b").DNA = []byte("TTTT")
	_, err = Merge(view, later)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(vb.DNA))
}

func TestMergeCoalescesLoadedRegions(t *testing.T) {
	view := tree(t, exons("F1"))
	setOf(view, "A", "B", "exons").Loaded = []feature.Span{{X1: 10, X2: 20}}
	fresh := tree(t, exons("F1"))
	setOf(fresh, "A", "B", "exons").Loaded = []feature.Span{{X1: 21, X2: 30}, {X1: 50, X2: 60}}

	_, err := Merge(view, fresh)
	require.NoError(t, err)
	assert.Equal(t, []feature.Span{{X1: 10, X2: 30}, {X1: 50, X2: 60}}, setOf(view, "A", "B", "exons").Loaded)
}

func TestMergeMasterAlign(t *testing.T) {
	t.Run("view adopts fresh master", func(t *testing.T) {
		view := tree(t, exons("F1"))
		require.NoError(t, view.SetMaster(nil))
		fresh := tree(t, exons("F2"))

		res, err := Merge(view, fresh)
		require.NoError(t, err)
		assert.Same(t, view.Alignment("a"), view.MasterAlign)
		assert.Same(t, res.Diff.Alignment("a"), res.Diff.MasterAlign)
	})
	t.Run("spliced master", func(t *testing.T) {
		view := tree(t, set{"C", "B", "exons", []string{"F1"}})
		fresh := tree(t, exons("F2"))
		freshA := fresh.MasterAlign

		_, err := Merge(view, fresh)
		require.NoError(t, err)
		assert.Same(t, freshA, view.MasterAlign)
	})
	t.Run("existing master kept", func(t *testing.T) {
		view := tree(t, exons("F1"))
		master := view.MasterAlign
		fresh := tree(t, set{"C", "B", "exons", []string{"F2"}})
		require.NoError(t, fresh.SetMaster(fresh.Alignment("c")))

		_, err := Merge(view, fresh)
		require.NoError(t, err)
		assert.Same(t, master, view.MasterAlign)
	})
}

func TestMergeRecordsRequestedEmptySets(t *testing.T) {
	view := tree(t, exons("F1"))
	fresh := tree(t, exons("F2"))
	fresh.RequestedSets = []feature.ID{"exons", "genes", "dna:translation"}

	res, err := Merge(view, fresh)
	require.NoError(t, err)
	require.Equal(t, CodeOK, res.Code)

	genes := setOf(view, "A", "B", "genes")
	require.NotNil(t, genes)
	assert.Zero(t, genes.NumChildren())
	assert.Equal(t, []feature.Span{view.ParentSpan}, genes.Loaded)
	assert.Nil(t, setOf(view, "A", "B", "dna:translation"))
	assert.Same(t, genes, setOf(res.Diff, "A", "B", "genes"))
	assert.Equal(t, 1, res.Stats.SetsAdded)
	assert.Equal(t, []feature.ID{"exons", "genes", "dna:translation"}, view.RequestedSets)

	// asking again only extends the loaded region
	again := tree(t, exons("F1"))
	again.RequestedSets = []feature.ID{"exons", "genes", "dna:peptide"}
	res, err = Merge(view, again)
	require.NoError(t, err)
	assert.Equal(t, CodeNone, res.Code)
	assert.Equal(t, 1, len(genes.Loaded))
	assert.Equal(t, []feature.ID{"exons", "genes", "dna:translation"}, view.RequestedSets,
		"a merge that adds nothing leaves the requested list alone")
}

func TestMergeValidationLeavesViewUntouched(t *testing.T) {
	for _, tc := range []struct {
		name  string
		fresh func(view *feature.Context) *feature.Context
	}{
		{"nil fresh", func(*feature.Context) *feature.Context { return nil }},
		{"self merge", func(v *feature.Context) *feature.Context { return v }},
		{"diff as fresh", func(v *feature.Context) *feature.Context { return feature.NewDiffContext(v) }},
		{"other sequence", func(*feature.Context) *feature.Context {
			c := tree(t, exons("F2"))
			c.Sequence = "chr2"
			return c
		}},
		{"unrequested set", func(*feature.Context) *feature.Context {
			c := tree(t, exons("F2"))
			c.RequestedSets = []feature.ID{"genes"}
			return c
		}},
		{"destroyed fresh", func(*feature.Context) *feature.Context {
			c := tree(t, exons("F2"))
			feature.Destroy(c)
			return c
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			view := tree(t, exons("F1"))
			before := featureKeys(t, view)
			fresh := tc.fresh(view)

			res, err := Merge(view, fresh)
			require.ErrorIs(t, err, feature.ErrArgument)
			assert.Equal(t, CodeError, res.Code)
			assert.Nil(t, res.Diff)
			assert.Equal(t, before, featureKeys(t, view))
			if fresh != nil && fresh != view && fresh.Valid() && !fresh.IsDiff() {
				assert.Len(t, featureKeys(t, fresh), 1, "rejected input is left alone")
			}
		})
	}
}

func TestMergeRejectsDiffView(t *testing.T) {
	view := tree(t, exons("F1"))
	_, err := Merge(feature.NewDiffContext(view), tree(t, exons("F2")))
	assert.ErrorIs(t, err, feature.ErrArgument)
}

func TestDestroyingDiffKeepsView(t *testing.T) {
	view := tree(t, exons("F1"))
	res, err := Merge(view, tree(t, exons("F2"), set{"C", "B", "genes", []string{"G1"}}))
	require.NoError(t, err)
	owned := res.Diff.OwnedCount()
	assert.Equal(t, 3, owned, "copies of A, B and exons")

	feature.Destroy(res.Diff)
	assert.Equal(t, []string{"a/b/exons/F1", "a/b/exons/F2", "c/b/genes/G1"}, featureKeys(t, view))
	require.NoError(t, feature.Check(view))
}
