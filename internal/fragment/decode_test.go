package fragment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotree/internal/feature"
)

const sample = `
sequence: chr1
span: [1, 1000]
requested: [exons, genes]
styles:
  - {name: exons, mode: transcript, colour: blue}
alignments:
  - name: A
    blocks:
      - name: B
        sets:
          - name: exons
            loaded: [[1, 500], [501, 600]]
            features:
              - name: T1
                span: [100, 300]
                strand: "+"
                mode: transcript
                exons: [[100, 150], [250, 300]]
                introns: [[151, 249]]
                cds: [120, 280]
              - {name: T2, span: [400, 450], strand: "-", mode: transcript, score: 2.5}
  - name: est
    blocks:
      - name: B
        parent: [1, 10]
        dna: acgtacgtac
        sets:
          - name: hits
            features:
              - name: Q1
                span: [2, 9]
                mode: alignment
                query: [1, 8]
                blocks:
                  - {q: [1, 4], t: [2, 5], qstrand: "+", tstrand: "+"}
                  - {q: [5, 8], t: [6, 9], qstrand: "+", tstrand: "+"}
                sequence: ACGTACGT
              - {name: path, span: [1, 10], mode: assembly-path, path: [[1, 5], [6, 10]]}
              - {name: dna, span: [1, 10], mode: sequence, peptide: true}
`

func TestDecodeBuildsTree(t *testing.T) {
	styles := NewStyles()
	ctx, err := Decode(strings.NewReader(sample), styles)
	require.NoError(t, err)
	require.NoError(t, feature.Check(ctx))

	assert.Equal(t, "chr1", ctx.Sequence)
	assert.Equal(t, feature.Span{X1: 1, X2: 1000}, ctx.ParentSpan)
	assert.Equal(t, []feature.ID{"exons", "genes"}, ctx.RequestedSets)
	assert.Same(t, ctx.Alignment("a"), ctx.MasterAlign, "first alignment is master by default")

	exons := ctx.Alignment("a").Block("b").FeatureSet("exons")
	require.NotNil(t, exons)
	assert.Equal(t, []feature.Span{{X1: 1, X2: 600}}, exons.Loaded, "loaded regions coalesce")
	require.NotNil(t, exons.Style)
	assert.Equal(t, "blue", exons.Style.Colour)
	assert.Equal(t, feature.ModeTranscript, exons.Style.Mode)

	fs := exons.Features()
	require.Len(t, fs, 2)
	tx := fs[0].Transcript()
	require.NotNil(t, tx)
	assert.Equal(t, []feature.Span{{X1: 100, X2: 150}, {X1: 250, X2: 300}}, tx.Exons)
	assert.Equal(t, feature.Span{X1: 120, X2: 280}, *tx.CDS)
	assert.Same(t, exons.Style, fs[0].Style)
	assert.Equal(t, 2.5, fs[1].Score)
	assert.Equal(t, feature.StrandReverse, fs[1].Strand)

	blk := ctx.Alignment("est").Block("b")
	assert.Equal(t, "acgtacgtac", string(blk.DNA))
	hits := blk.FeatureSet("hits").Features()
	require.Len(t, hits, 3)
	h := hits[0].Homology()
	require.NotNil(t, h)
	assert.Equal(t, feature.Span{X1: 1, X2: 8}, h.Query)
	assert.Len(t, h.Blocks, 2)
	assert.Equal(t, feature.FeatureID(feature.ModeAlignment, "Q1", feature.StrandNone, feature.Span{X1: 2, X2: 9}, h.Query), hits[0].ID())
	assert.Equal(t, []feature.Span{{X1: 1, X2: 5}, {X1: 6, X2: 10}}, hits[1].AssemblyPath().Path)
	assert.Equal(t, feature.ModeSequence, hits[2].Mode())
}

func TestStylesAreSharedAcrossFragments(t *testing.T) {
	styles := NewStyles()
	a, err := Decode(strings.NewReader(sample), styles)
	require.NoError(t, err)
	b, err := Decode(strings.NewReader(sample), styles)
	require.NoError(t, err)
	assert.Same(t,
		a.Alignment("a").Block("b").FeatureSet("exons").Style,
		b.Alignment("a").Block("b").FeatureSet("exons").Style)
	assert.Equal(t, 2, styles.Len())
}

func TestMasterKey(t *testing.T) {
	doc := "sequence: s\nspan: [1, 10]\nmaster: est\nalignments: [{name: A}, {name: EST}]\n"
	ctx, err := Decode(strings.NewReader(doc), nil)
	require.NoError(t, err)
	assert.Same(t, ctx.Alignment("est"), ctx.MasterAlign)

	doc = "sequence: s\nspan: [1, 10]\nmaster: \"\"\nalignments: [{name: A}]\n"
	ctx, err = Decode(strings.NewReader(doc), nil)
	require.NoError(t, err)
	assert.Nil(t, ctx.MasterAlign, "empty master key means no master")
}

func TestDecodeErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		doc  string
		want error
	}{
		"no sequence":   {"span: [1, 10]\n", feature.ErrArgument},
		"bad span":      {"sequence: s\nspan: [10, 1]\n", feature.ErrArgument},
		"short span":    {"sequence: s\nspan: [1]\n", feature.ErrArgument},
		"bad strand":    {"sequence: s\nspan: [1, 10]\nalignments: [{name: A, blocks: [{name: B, sets: [{name: x, features: [{name: f, span: [1, 2], strand: '?'}]}]}]}]\n", feature.ErrArgument},
		"bad mode":      {"sequence: s\nspan: [1, 10]\nalignments: [{name: A, blocks: [{name: B, sets: [{name: x, features: [{name: f, span: [1, 2], mode: wiggle}]}]}]}]\n", feature.ErrArgument},
		"dup feature":   {"sequence: s\nspan: [1, 10]\nalignments: [{name: A, blocks: [{name: B, sets: [{name: x, features: [{name: f, span: [1, 2]}, {name: F, span: [1, 2]}]}]}]}]\n", feature.ErrDuplicate},
		"dup alignment": {"sequence: s\nspan: [1, 10]\nalignments: [{name: A}, {name: a}]\n", feature.ErrDuplicate},
		"bad dna":       {"sequence: s\nspan: [1, 10]\nalignments: [{name: A, blocks: [{name: B, dna: ACG}]}]\n", feature.ErrArgument},
		"no master":     {"sequence: s\nspan: [1, 10]\nmaster: Z\nalignments: [{name: A}]\n", feature.ErrNotFound},
		"not yaml":      {"sequence: [\n", feature.ErrArgument},
	} {
		_, err := Decode(strings.NewReader(tc.doc), nil)
		assert.ErrorIs(t, err, tc.want, name)
	}
}

func TestLoadFileMultiDocument(t *testing.T) {
	p := filepath.Join(t.TempDir(), "frag.yaml")
	body := "sequence: s\nspan: [1, 10]\nalignments: [{name: A}]\n---\nsequence: s\nspan: [1, 10]\nalignments: [{name: B}]\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	ctxs, err := LoadFile(p, nil)
	require.NoError(t, err)
	require.Len(t, ctxs, 2)
	assert.NotNil(t, ctxs[0].Alignment("a"))
	assert.NotNil(t, ctxs[1].Alignment("b"))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(body+"---\nspan: [1, 2]\n"), 0o644))
	_, err = LoadFile(bad, nil)
	assert.ErrorIs(t, err, feature.ErrArgument)
	assert.Contains(t, err.Error(), "document 3")
}
