//go:build debug

package feature

// strictConsistency turns child-table consistency violations into panics.
const strictConsistency = true
