//go:build !debug

package feature

const strictConsistency = false
