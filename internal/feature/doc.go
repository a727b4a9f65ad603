// Package feature holds the annotation hierarchy
// (Context, Alignment, Block, FeatureSet, Feature), node identity and
// ownership, and the generic traversal used by the merge, erase and
// reverse-complement engines.
//
// Every node has a unique id within its parent, a non-owning back
// reference to that parent, and an ordered, id-indexed set of children.
// A tree is mutated by one goroutine at a time.
package feature
