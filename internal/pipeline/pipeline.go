// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"sync"

	"annotree/internal/feature"
	"annotree/internal/logx"
)

// Config controls the loading pipeline.
type Config struct {
	Threads int // number of loader goroutines (>=1)
}

// Item is one delivery to visit: either a loaded context or the error that
// kept a source from loading.
type Item struct {
	Source string
	Index  int // position of Ctx within its source
	Ctx    *feature.Context
	Err    error
}

// ForEachContext loads paths with ld and calls visit for every context, in
// the order the paths were given and, within a path, the order the loader
// returned them. Repeated paths are loaded once. A source that fails to load
// is delivered as an Item with Err set; visit decides whether that stops the
// run.
//
// After visit returns an error it is not called again and the remaining
// contexts are destroyed. It returns visit's first error, or the context's
// error when cancelled.
func ForEachContext(
	ctx context.Context,
	cfg Config,
	paths []string,
	ld Loader,
	visit func(Item) error,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	paths = dedupe(paths)

	type job struct {
		idx  int
		path string
	}
	type result struct {
		job
		ctxs []*feature.Context
		err  error
	}
	jobs := make(chan job, cfg.Threads*2)
	results := make(chan result, cfg.Threads*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					ctxs, err := ld.Load(j.path)
					select {
					case results <- result{job: j, ctxs: ctxs, err: err}:
					case <-ctx.Done():
						DestroyAll(ctxs)
						return
					}
				}
			}
		}()
	}

	// Collector: reorders results and visits them one at a time
	var (
		verr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		pending := make(map[int]result)
		next := 0
		deliver := func(r result) {
			if r.err != nil {
				logx.Logger().Warn("load failed", "source", r.path, "err", r.err)
				if verr == nil {
					verr = visit(Item{Source: r.path, Err: r.err})
				}
				return
			}
			for i, c := range r.ctxs {
				if verr != nil || ctx.Err() != nil {
					feature.Destroy(c)
					continue
				}
				verr = visit(Item{Source: r.path, Index: i, Ctx: c})
			}
		}
		for r := range results {
			pending[r.idx] = r
			for {
				p, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				deliver(p)
			}
		}
		// cancelled runs can leave gaps
		for _, r := range pending {
			DestroyAll(r.ctxs)
		}
	}()

	// Feed work
feed:
	for i, p := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{idx: i, path: p}:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return verr
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0:0]
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// DestroyAll releases contexts a visitor will never see.
func DestroyAll(ctxs []*feature.Context) {
	for _, c := range ctxs {
		feature.Destroy(c)
	}
}
