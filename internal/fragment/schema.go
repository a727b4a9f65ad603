// internal/fragment/schema.go
package fragment

// Document is one YAML fragment: a region of a reference sequence and the
// annotation a producer delivered for it.
//
//	sequence: chr1
//	span: [1, 10000]
//	master: A
//	requested: [exons, genes]
//	alignments:
//	  - name: A
//	    blocks:
//	      - name: B
//	        dna: ACGT...
//	        sets:
//	          - name: exons
//	            loaded: [[1, 5000]]
//	            features:
//	              - {name: F1, span: [100, 150], strand: "+"}
type Document struct {
	Sequence  string     `yaml:"sequence"`
	Span      []int      `yaml:"span"`
	Master    *string    `yaml:"master,omitempty"`
	Requested []string   `yaml:"requested,omitempty"`
	Styles    []StyleDoc `yaml:"styles,omitempty"`
	Aligns    []AlignDoc `yaml:"alignments"`
}

type StyleDoc struct {
	Name   string `yaml:"name"`
	Mode   string `yaml:"mode,omitempty"`
	Colour string `yaml:"colour,omitempty"`
}

type AlignDoc struct {
	Name   string     `yaml:"name"`
	Span   []int      `yaml:"span,omitempty"`
	Blocks []BlockDoc `yaml:"blocks"`
}

type BlockDoc struct {
	Name     string   `yaml:"name,omitempty"`
	Parent   []int    `yaml:"parent,omitempty"`
	Block    []int    `yaml:"block,omitempty"`
	Reversed bool     `yaml:"reversed,omitempty"`
	DNA      string   `yaml:"dna,omitempty"`
	Sets     []SetDoc `yaml:"sets"`
}

type SetDoc struct {
	Name     string       `yaml:"name"`
	Style    string       `yaml:"style,omitempty"`
	Loaded   [][]int      `yaml:"loaded,omitempty"`
	Features []FeatureDoc `yaml:"features"`
}

// FeatureDoc carries the fields of every mode; which ones are read depends
// on Mode.
type FeatureDoc struct {
	Name   string  `yaml:"name"`
	Span   []int   `yaml:"span"`
	Strand string  `yaml:"strand,omitempty"`
	Score  float64 `yaml:"score,omitempty"`
	Mode   string  `yaml:"mode,omitempty"`

	// transcript
	Exons   [][]int `yaml:"exons,omitempty"`
	Introns [][]int `yaml:"introns,omitempty"`
	CDS     []int   `yaml:"cds,omitempty"`

	// alignment
	Query    []int           `yaml:"query,omitempty"`
	Blocks   []AlignBlockDoc `yaml:"blocks,omitempty"`
	Sequence string          `yaml:"sequence,omitempty"`

	// sequence
	Peptide bool `yaml:"peptide,omitempty"`

	// assembly-path
	Path [][]int `yaml:"path,omitempty"`
}

type AlignBlockDoc struct {
	Q       []int  `yaml:"q"`
	T       []int  `yaml:"t"`
	QStrand string `yaml:"qstrand,omitempty"`
	TStrand string `yaml:"tstrand,omitempty"`
}
