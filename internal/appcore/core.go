// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"annotree/internal/feature"
	"annotree/internal/logx"
	"annotree/internal/merge"
	"annotree/internal/metrics"
	"annotree/internal/pipeline"
	"annotree/internal/runutil"
	"annotree/internal/session"
	"annotree/internal/watch"
	"annotree/internal/writers"
	"annotree/pkg/api"
)

// Operations.
const (
	OpMerge   = "merge"
	OpErase   = "erase"
	OpRevcomp = "revcomp"
	OpWatch   = "watch"
)

type Options struct {
	Op     string
	View   string   // starting view; may be empty for merge and watch
	Inputs []string // fragment files for merge and erase
	DNA    string

	Threads int

	Emit             string
	Events           string
	NoChangeExitCode int

	Watch       watch.Config
	MetricsAddr string
}

// Run applies one operation to the view and writes what changed. Exit codes:
// 0 ok, 2 bad arguments or unreadable view, 3 runtime failure, 130
// cancelled, NoChangeExitCode when nothing changed.
func Run(
	parent context.Context,
	stdout, stderr io.Writer,
	o Options,
	wf TreeWriterFactory,
) int {
	outw := bufio.NewWriter(stdout)
	var out io.Writer = outw
	live := o.Op == OpWatch
	if live {
		out = stdout
	}

	ld, err := NewLoader(o.DNA)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	var view *feature.Context
	if o.View != "" {
		if view, err = ld.LoadView(o.View); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	thr := runutil.EffectiveThreads(o.Threads, len(o.Inputs))
	m := metrics.New()

	var (
		trees   chan<- api.TreeV1
		treeErr <-chan error
	)
	if o.Emit != writers.EmitNone {
		trees, treeErr = wf.Start(out, thr*4)
	}
	var (
		events      chan<- api.EventV1
		closeEvents = func() error { return nil }
	)
	if o.Events != "" {
		if events, closeEvents, err = NewEventWriterFactory(o.Events, live).Start(stderr, 64); err != nil {
			fmt.Fprintln(stderr, err)
			feature.Destroy(view)
			if trees != nil {
				close(trees)
				<-treeErr
			}
			return 2
		}
	}

	sopt := session.Options{Metrics: m}
	if events != nil {
		sopt.OnEvent = func(ev api.EventV1) error {
			select {
			case events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if o.Emit == writers.EmitDiff {
		sopt.OnDiff = func(t api.TreeV1) error {
			select {
			case trees <- t:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	sess := session.New(view, sopt)
	defer sess.Close()

	if o.MetricsAddr != "" {
		stop := serveMetrics(o.MetricsAddr, m)
		defer stop()
	}

	failures := 0
	visit := func(it pipeline.Item) error {
		if it.Err != nil {
			m.LoadError()
			failures++
			fmt.Fprintln(stderr, it.Err)
			return nil
		}
		apply := sess.Merge
		if o.Op == OpErase {
			apply = sess.Erase
		}
		res, err := apply(it.Source, it.Ctx)
		if err != nil && res.Code == merge.CodeError {
			failures++
			fmt.Fprintf(stderr, "%s: %v\n", it.Source, err)
			return nil
		}
		return err
	}

	var perr error
	switch o.Op {
	case OpMerge, OpErase:
		perr = pipeline.ForEachContext(ctx, pipeline.Config{Threads: thr}, o.Inputs, ld, visit)
	case OpWatch:
		perr = watch.Run(ctx, o.Watch, ld, visit)
	case OpRevcomp:
		if _, err := sess.Revcomp(); err != nil {
			failures++
			fmt.Fprintln(stderr, err)
		}
	default:
		perr = fmt.Errorf("unknown operation %q", o.Op)
	}

	if o.Emit == writers.EmitView && sess.View() != nil {
		trees <- writers.ToAPI(sess.View())
	}
	var werr error
	if trees != nil {
		close(trees)
		werr = <-treeErr
	}
	eerr := closeEvents()

	if writers.IsBrokenPipe(werr) {
		return 0
	} else if werr != nil {
		fmt.Fprintln(stderr, werr)
		return 3
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return 3
	}
	if eerr != nil && !writers.IsBrokenPipe(eerr) {
		fmt.Fprintln(stderr, eerr)
		return 3
	}

	if perr != nil {
		if errors.Is(perr, context.Canceled) {
			return 130
		}
		fmt.Fprintln(stderr, perr)
		return 3
	}
	if failures > 0 {
		return 3
	}
	if sess.Changes() == 0 {
		return o.NoChangeExitCode
	}
	return 0
}

// serveMetrics exposes m on addr until the returned func is called.
func serveMetrics(addr string, m *metrics.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Logger().Error("metrics server", "addr", addr, "err", err)
		}
	}()
	logx.Logger().Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
