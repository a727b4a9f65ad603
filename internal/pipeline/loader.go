// internal/pipeline/loader.go
package pipeline

import "annotree/internal/feature"

// Loader is the minimal capability the pipeline needs: turn one input path
// into the contexts it holds. Loaders run on several goroutines at once.
type Loader interface {
	Load(path string) ([]*feature.Context, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) ([]*feature.Context, error)

func (f LoaderFunc) Load(path string) ([]*feature.Context, error) { return f(path) }
