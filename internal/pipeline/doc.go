// Package pipeline loads input files on worker goroutines and hands the
// resulting feature contexts, one at a time and in input order, to a visit
// callback running on a single collector goroutine. Everything that mutates
// the live view happens inside visit, so the view is never touched
// concurrently.
//
// The only contract to implement is Loader.
package pipeline
