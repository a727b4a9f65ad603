package pretty

import (
	"testing"

	"annotree/pkg/api"
)

func sampleTree() api.TreeV1 {
	return api.TreeV1{
		Sequence: "chr1", Start: 1, End: 100, Diff: true,
		Alignments: []api.AlignV1{{
			ID: "a", Name: "A", Start: 1, End: 100,
			Blocks: []api.BlockV1{{
				ID: "b", Name: "B", Start: 1, End: 100, BlockStart: 1, BlockEnd: 100,
				Sets: []api.SetV1{{
					ID: "exons", Name: "exons",
					Features: []api.FeatureV1{
						{Name: "F1", Start: 1, End: 10, Strand: "+", Mode: "basic"},
						{Name: "F2", Start: 41, End: 60, Strand: "-", Mode: "basic"},
						{
							Name: "T1", Start: 21, End: 80, Strand: "+", Mode: "transcript",
							Exons:   [][2]int{{21, 30}, {71, 80}},
							Introns: [][2]int{{31, 70}},
						},
					},
				}},
			}},
		}},
	}
}

func TestRenderTree(t *testing.T) {
	o := DefaultOptions
	o.Width = 20
	got := RenderTreeWithOptions(sampleTree(), o)
	want := "chr1:1-100 (diff)\n" +
		"  A 1-100\n" +
		"    B 1-100 -> 1-100\n" +
		"      exons (3)\n" +
		"        F1 + 1-10  [=>..................]\n" +
		"        F2 - 41-60 [........<===........]\n" +
		"        T1 + 21-80 [....##--------#>....]\n"
	if got != want {
		t.Fatalf("mismatch:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestTrackClampsToSpan(t *testing.T) {
	o := DefaultOptions
	o.Width = 10
	f := api.FeatureV1{Start: -50, End: 500, Strand: "."}
	if got := Track(f, 1, 100, o); got != "==========" {
		t.Fatalf("out-of-span feature should fill the track, got %q", got)
	}
}

func TestRevcompedBlockIsMarked(t *testing.T) {
	tr := sampleTree()
	tr.Diff = false
	tr.Alignments[0].Blocks[0].Revcomped = true
	got := RenderTree(tr)
	want := "chr1:1-100\n  A 1-100\n    B 1-100 -> 1-100 revcomped\n"
	if len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("header lines:\n%s", got)
	}
}
