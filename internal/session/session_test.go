package session

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotree/internal/feature"
	"annotree/internal/fragment"
	"annotree/internal/merge"
	"annotree/internal/metrics"
	"annotree/pkg/api"
)

func frag(t *testing.T, feats ...string) *feature.Context {
	t.Helper()
	var b strings.Builder
	b.WriteString("sequence: chr1\nspan: [1, 1000]\nalignments:\n  - name: A\n    blocks:\n      - name: B\n        sets:\n          - name: exons\n            features:\n")
	for i, f := range feats {
		b.WriteString("              - {name: " + f + ", span: [" + strconv.Itoa(i*10+1) + ", " + strconv.Itoa(i*10+5) + "], strand: '+'}\n")
	}
	ctx, err := fragment.Decode(strings.NewReader(b.String()), nil)
	require.NoError(t, err)
	return ctx
}

type recorder struct {
	events []api.EventV1
	diffs  []api.TreeV1
}

func (r *recorder) opts(m *metrics.Metrics) Options {
	return Options{
		Metrics: m,
		OnEvent: func(ev api.EventV1) error { r.events = append(r.events, ev); return nil },
		OnDiff:  func(t api.TreeV1) error { r.diffs = append(r.diffs, t); return nil },
	}
}

func TestMergeIntoEmptySessionAdopts(t *testing.T) {
	var rec recorder
	m := metrics.New()
	s := New(nil, rec.opts(m))
	fresh := frag(t, "F1", "F2")

	out, err := s.Merge("a.yaml", fresh)
	require.NoError(t, err)
	assert.Equal(t, merge.CodeOK, out.Code)
	assert.Equal(t, 2, out.Merge.FeaturesAdded)
	assert.Same(t, fresh, s.View())
	assert.True(t, fresh.Valid())
	assert.Equal(t, 1, s.Changes())

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, "merge", ev.Kind)
	assert.Equal(t, "a.yaml", ev.Source)
	assert.Equal(t, "ok", ev.Code)
	require.NotNil(t, ev.Diff)
	assert.True(t, ev.Diff.Diff)
	require.Len(t, rec.diffs, 1)

	const want = `
# HELP annotree_features_added_total Features merged into the view
# TYPE annotree_features_added_total counter
annotree_features_added_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "annotree_features_added_total"))
}

func TestMergeThenEraseRoundTrip(t *testing.T) {
	var rec recorder
	s := New(frag(t, "F1"), rec.opts(nil))

	out, err := s.Merge("b.yaml", frag(t, "F1", "F2"))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Merge.FeaturesAdded)
	assert.Equal(t, 2, feature.CountFeatures(s.View()))
	require.Len(t, rec.diffs, 1)
	assert.Len(t, rec.diffs[0].Alignments[0].Blocks[0].Sets[0].Features, 1)

	out, err = s.Merge("b.yaml", frag(t, "F1", "F2"))
	require.NoError(t, err)
	assert.Equal(t, merge.CodeNone, out.Code)
	assert.Len(t, rec.diffs, 1, "empty diffs are not emitted")
	assert.Nil(t, rec.events[1].Diff)

	out, err = s.Erase("c.yaml", frag(t, "F1", "F2"))
	require.NoError(t, err)
	assert.Equal(t, merge.CodeOK, out.Code)
	assert.Equal(t, 2, out.Erase.FeaturesErased)
	assert.Equal(t, 3, out.Erase.NodesPruned)
	assert.Zero(t, feature.CountFeatures(s.View()))
	assert.Equal(t, 2, s.Changes())
	assert.Equal(t, "erase", rec.events[2].Kind)
	assert.Equal(t, 2, rec.events[2].Stats.FeaturesErased)
}

func TestMergeErrorIsReported(t *testing.T) {
	var rec recorder
	s := New(frag(t, "F1"), rec.opts(nil))
	other := frag(t, "F2")
	other.Sequence = "chr2"

	out, err := s.Merge("x.yaml", other)
	assert.ErrorIs(t, err, feature.ErrArgument)
	assert.Equal(t, merge.CodeError, out.Code)
	assert.False(t, other.Valid(), "rejected input is released")
	require.Len(t, rec.events, 1)
	assert.Equal(t, "error", rec.events[0].Code)
	assert.NotEmpty(t, rec.events[0].Error)
	assert.Empty(t, rec.diffs)
	assert.Equal(t, 1, feature.CountFeatures(s.View()))
}

func TestErasingEmptySetIsAChange(t *testing.T) {
	var rec recorder
	s := New(frag(t), rec.opts(nil))

	out, err := s.Erase("empty.yaml", frag(t))
	require.NoError(t, err)
	assert.Equal(t, merge.CodeOK, out.Code)
	assert.Equal(t, merge.EraseStats{NodesPruned: 3}, out.Erase)
	assert.Zero(t, s.View().NumChildren())
	assert.Equal(t, 1, s.Changes())

	require.Len(t, rec.diffs, 1, "the pruned path is reported")
	assert.Equal(t, "exons", rec.diffs[0].Alignments[0].Blocks[0].Sets[0].Name)
	assert.Empty(t, rec.diffs[0].Alignments[0].Blocks[0].Sets[0].Features)
}

func TestEraseWithoutView(t *testing.T) {
	s := New(nil, Options{})
	_, err := s.Erase("x", frag(t, "F1"))
	assert.ErrorIs(t, err, feature.ErrArgument)
}

func TestRevcomp(t *testing.T) {
	var rec recorder
	s := New(frag(t, "F1"), rec.opts(nil))
	out, err := s.Revcomp()
	require.NoError(t, err)
	assert.Equal(t, merge.CodeOK, out.Code)
	f := s.View().Alignment("a").Block("b").FeatureSet("exons").Features()[0]
	assert.Equal(t, feature.Span{X1: 996, X2: 1000}, f.Span)
	assert.Equal(t, "revcomp", rec.events[0].Kind)
}

func TestSinkErrorsAreReturned(t *testing.T) {
	boom := errors.New("sink closed")
	s := New(nil, Options{OnEvent: func(api.EventV1) error { return boom }})
	_, err := s.Merge("a", frag(t, "F1"))
	assert.ErrorIs(t, err, boom)
}

func TestClose(t *testing.T) {
	view := frag(t, "F1")
	s := New(view, Options{})
	s.Close()
	assert.False(t, view.Valid())
	assert.Nil(t, s.View())
}
