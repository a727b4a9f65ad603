// pkg/api/tree_v1.go
package api

// TreeV1 is the stable JSON/JSONL schema for one feature context, either a
// live view or a diff. Keep fields, names, and types stable. Add new fields
// only with ",omitempty".
type TreeV1 struct {
	Sequence   string    `json:"sequence"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Diff       bool      `json:"diff,omitempty"`
	Master     string    `json:"master,omitempty"`
	Requested  []string  `json:"requested,omitempty"`
	Sources    []string  `json:"sources,omitempty"`
	Alignments []AlignV1 `json:"alignments"`
}

type AlignV1 struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Start  int       `json:"start"`
	End    int       `json:"end"`
	Blocks []BlockV1 `json:"blocks"`
}

// BlockV1 places Start..End of the reference onto BlockStart..BlockEnd of
// the aligned sequence.
type BlockV1 struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	BlockStart int     `json:"block_start"`
	BlockEnd   int     `json:"block_end"`
	Reversed   bool    `json:"reversed,omitempty"`
	Revcomped  bool    `json:"revcomped,omitempty"`
	DNA        string  `json:"dna,omitempty"`
	Sets       []SetV1 `json:"sets"`
}

type SetV1 struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Style    string      `json:"style,omitempty"`
	Loaded   [][2]int    `json:"loaded,omitempty"`
	Features []FeatureV1 `json:"features"`
}

// FeatureV1 is one feature; the mode-specific fields are empty for other
// modes.
type FeatureV1 struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Strand string  `json:"strand"` // "+" | "-" | "."
	Score  float64 `json:"score,omitempty"`
	Mode   string  `json:"mode"`

	Exons   [][2]int `json:"exons,omitempty"`
	Introns [][2]int `json:"introns,omitempty"`
	CDS     *[2]int  `json:"cds,omitempty"`

	Query    *[2]int        `json:"query,omitempty"`
	Blocks   []AlignBlockV1 `json:"blocks,omitempty"`
	Sequence string         `json:"sequence,omitempty"`

	Peptide bool `json:"peptide,omitempty"`

	Path [][2]int `json:"path,omitempty"`
}

type AlignBlockV1 struct {
	Q       [2]int `json:"q"`
	T       [2]int `json:"t"`
	QStrand string `json:"q_strand"`
	TStrand string `json:"t_strand"`
}

// StatsV1 counts what one event changed.
type StatsV1 struct {
	FeaturesAdded  int `json:"features_added,omitempty"`
	SetsAdded      int `json:"sets_added,omitempty"`
	BlocksAdded    int `json:"blocks_added,omitempty"`
	AlignsAdded    int `json:"aligns_added,omitempty"`
	FeaturesErased int `json:"features_erased,omitempty"`
	NodesPruned    int `json:"nodes_pruned,omitempty"`
}

// EventV1 is one line of the change stream: the outcome of a merge, erase
// or reverse complement, with the diff tree when something changed.
type EventV1 struct {
	ID     string  `json:"id"`
	Time   string  `json:"time"` // RFC 3339
	Kind   string  `json:"kind"` // "merge" | "erase" | "revcomp"
	Source string  `json:"source,omitempty"`
	Code   string  `json:"code"` // "ok" | "none" | "error"
	Error  string  `json:"error,omitempty"`
	Stats  StatsV1 `json:"stats"`
	Diff   *TreeV1 `json:"diff,omitempty"`
}
