// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"time"

	"annotree/internal/feature"
	"annotree/internal/logx"
	"annotree/internal/merge"
	"annotree/internal/metrics"
	"annotree/internal/revcomp"
	"annotree/internal/writers"
	"annotree/pkg/api"
)

// Operation kinds, as they appear in events and metrics.
const (
	KindMerge   = "merge"
	KindErase   = "erase"
	KindRevcomp = "revcomp"
)

// Options wires a Session to its outputs. Every field may be nil.
type Options struct {
	Metrics *metrics.Metrics
	// OnEvent receives one event per operation.
	OnEvent func(api.EventV1) error
	// OnDiff receives the snapshot of every non-empty diff.
	OnDiff func(api.TreeV1) error
}

// Session owns the live view and applies operations to it one at a time.
// It is not safe for concurrent use; callers serialise through one
// goroutine (see pipeline.ForEachContext).
type Session struct {
	view *feature.Context
	opt  Options

	changes int
}

// Outcome summarises one operation. Diffs are never returned: they are
// snapshotted for OnDiff/OnEvent and destroyed before the call returns.
type Outcome struct {
	Kind  string
	Code  merge.Code
	Merge merge.Stats
	Erase merge.EraseStats
}

// New starts a session over view, which may be nil until the first merge.
func New(view *feature.Context, opt Options) *Session {
	s := &Session{view: view, opt: opt}
	s.opt.Metrics.SetViewFeatures(feature.CountFeatures(view))
	return s
}

func (s *Session) View() *feature.Context { return s.view }

// Changes counts operations that changed the view.
func (s *Session) Changes() int { return s.changes }

// Merge folds fresh into the view. The session takes ownership of fresh.
func (s *Session) Merge(source string, fresh *feature.Context) (Outcome, error) {
	t0 := time.Now()
	res, err := merge.Merge(s.view, fresh)
	if res.View != nil {
		s.view = res.View
	}
	if fresh != s.view {
		feature.Destroy(fresh)
	}
	out := Outcome{Kind: KindMerge, Code: res.Code, Merge: res.Stats}
	if err == nil {
		s.opt.Metrics.Added(res.Stats.FeaturesAdded)
	}
	stats := api.StatsV1{
		FeaturesAdded: res.Stats.FeaturesAdded,
		SetsAdded:     res.Stats.SetsAdded,
		BlocksAdded:   res.Stats.BlocksAdded,
		AlignsAdded:   res.Stats.AlignsAdded,
	}
	return out, s.finish(KindMerge, source, res.Code, stats, res.Diff, err, t0)
}

// Erase removes the features named by remove from the view. The session
// takes ownership of remove.
func (s *Session) Erase(source string, remove *feature.Context) (Outcome, error) {
	t0 := time.Now()
	if s.view == nil {
		feature.Destroy(remove)
		err := fmt.Errorf("%w: erase: no view loaded", feature.ErrArgument)
		return Outcome{Kind: KindErase, Code: merge.CodeError}, s.finish(KindErase, source, merge.CodeError, api.StatsV1{}, nil, err, t0)
	}
	res, err := merge.Erase(s.view, remove)
	if remove != s.view {
		feature.Destroy(remove)
	}
	out := Outcome{Kind: KindErase, Code: res.Code, Erase: res.Stats}
	s.opt.Metrics.Erased(res.Stats.FeaturesErased, res.Stats.NodesPruned)
	stats := api.StatsV1{
		FeaturesErased: res.Stats.FeaturesErased,
		NodesPruned:    res.Stats.NodesPruned,
	}
	return out, s.finish(KindErase, source, res.Code, stats, res.Diff, err, t0)
}

// Revcomp reverse complements the whole view in place.
func (s *Session) Revcomp() (Outcome, error) {
	t0 := time.Now()
	code := merge.CodeOK
	err := revcomp.Context(s.view)
	if err != nil {
		code = merge.CodeError
	}
	return Outcome{Kind: KindRevcomp, Code: code}, s.finish(KindRevcomp, "", code, api.StatsV1{}, nil, err, t0)
}

// Close destroys the view.
func (s *Session) Close() {
	feature.Destroy(s.view)
	s.view = nil
}

// finish reports one operation and releases its diff.
func (s *Session) finish(kind, source string, code merge.Code, stats api.StatsV1, diff *feature.Context, opErr error, t0 time.Time) error {
	defer feature.Destroy(diff)
	if code != merge.CodeOK {
		// partial diffs of failed operations are not reported
		diff = nil
	}

	s.opt.Metrics.Observe(kind, code.String(), time.Since(t0))
	s.opt.Metrics.SetViewFeatures(feature.CountFeatures(s.view))
	if code == merge.CodeOK {
		s.changes++
	}

	log := logx.Logger().With("op", kind, "source", source, "code", code.String())
	if opErr != nil {
		log.Warn("operation failed", "err", opErr)
	} else {
		log.Info("operation applied",
			"added", stats.FeaturesAdded,
			"erased", stats.FeaturesErased,
			"pruned", stats.NodesPruned)
	}

	var errs []error
	if opErr != nil {
		errs = append(errs, opErr)
	}
	if s.opt.OnEvent != nil {
		if err := s.opt.OnEvent(writers.NewEvent(kind, source, code.String(), stats, diff, opErr)); err != nil {
			errs = append(errs, err)
		}
	}
	if s.opt.OnDiff != nil && diff != nil {
		if err := s.opt.OnDiff(writers.ToAPI(diff)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
