// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"annotree/pkg/api"
)

const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatJSONL  = "jsonl"
	FormatPretty = "pretty"
)

// What a run hands the tree writer.
const (
	EmitDiff = "diff" // one tree per change
	EmitView = "view" // the final view, once
	EmitNone = "none"
)

// TreeArgs is what a tree writer consumes: the trees to render, in order.
type TreeArgs struct {
	Header bool
	Flush  bool // flush after every tree, for live streams
	In     <-chan api.TreeV1
}

// TreeWriters maps an output format to its renderer. Register in init()
// blocks; last registration wins.
var TreeWriters = map[string]func(w io.Writer, args TreeArgs) error{}

func RegisterTree(format string, fn func(io.Writer, TreeArgs) error) { TreeWriters[format] = fn }

// WriteTrees dispatches to the renderer for format.
func WriteTrees(format string, w io.Writer, args TreeArgs) error {
	fn, ok := TreeWriters[format]
	if !ok {
		return fmt.Errorf("unknown tree format %q (no writer registered)", format)
	}
	return fn(w, args)
}

// Formats lists the registered formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(TreeWriters))
	for f := range TreeWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
