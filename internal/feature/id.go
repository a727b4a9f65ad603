package feature

import (
	"fmt"
	"strings"
)

// ID is the level-scoped unique key of a node. Sibling nodes never share
// an ID. IDs are derived from names (lower-cased) and, for features and
// blocks, from coordinates and strand.
type ID string

func (id ID) String() string { return string(id) }

// SetID canonicalises a feature-set (or style) name.
func SetID(name string) ID { return ID(strings.ToLower(strings.TrimSpace(name))) }

// AlignID canonicalises an alignment name.
func AlignID(name string) ID { return ID(strings.ToLower(strings.TrimSpace(name))) }

// BlockID builds the id of a block from its reference and non-reference
// spans, e.g. "1.1000.+_1.1000.+".
func BlockID(ref Span, refStrand Strand, non Span, nonStrand Strand) ID {
	return ID(fmt.Sprintf("%d.%d.%s_%d.%d.%s",
		ref.X1, ref.X2, blockStrand(refStrand),
		non.X1, non.X2, blockStrand(nonStrand)))
}

func blockStrand(s Strand) string {
	if s == StrandReverse {
		return "-"
	}
	return "+"
}

// FeatureID builds the unique id of a feature. Only the name part is
// lower-cased; alignment (homology) features also encode the query span so
// that several hits of one query at one place stay distinct.
func FeatureID(mode Mode, name string, strand Strand, span, query Span) ID {
	name = strings.ToLower(name)
	if mode == ModeAlignment {
		return ID(fmt.Sprintf("%s_'%s'_%d.%d_%d.%d", name, strand, span.X1, span.X2, query.X1, query.X2))
	}
	return ID(fmt.Sprintf("%s_'%s'_%d.%d", name, strand, span.X1, span.X2))
}
