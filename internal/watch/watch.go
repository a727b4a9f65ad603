// Package watch feeds fragment files dropped into a directory to a visitor,
// one at a time, as they appear or change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"annotree/internal/logx"
	"annotree/internal/pipeline"
	"annotree/internal/runutil"
)

// Config selects which files are picked up.
type Config struct {
	Dir       string
	Pattern   string        // filepath.Match pattern on the base name; empty matches all
	Debounce  time.Duration // quiet time after the last write before a file is loaded
	DedupeCap int           // remembered (path, size, mtime) versions
}

// Run loads every matching file already in Dir, in name order, then every
// file that is created or rewritten until ctx is cancelled. Items are
// delivered to visit on the calling goroutine. An unchanged file is not
// delivered twice.
//
// It returns visit's first error, or ctx.Err() once cancelled.
func Run(ctx context.Context, cfg Config, ld pipeline.Loader, visit func(pipeline.Item) error) error {
	if cfg.Dir == "" {
		return errors.New("watch: no directory")
	}
	if cfg.Pattern != "" {
		if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
			return fmt.Errorf("watch: pattern %q: %w", cfg.Pattern, err)
		}
	}
	fi, err := os.Stat(cfg.Dir)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", cfg.Dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	// subscribe before the initial scan so nothing written in between is lost
	if err := w.Add(cfg.Dir); err != nil {
		return fmt.Errorf("watch: %s: %w", cfg.Dir, err)
	}

	r := &runner{cfg: cfg, ld: ld, visit: visit, seen: runutil.NewLRUSet[string](cfg.DedupeCap)}

	existing, err := r.scan()
	if err != nil {
		return err
	}
	for _, p := range existing {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.load(p); err != nil {
			return err
		}
	}
	logx.Logger().Info("watching", "dir", cfg.Dir, "pattern", cfg.Pattern, "existing", len(existing))

	pending := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	arm := func() {
		if len(pending) == 0 {
			return
		}
		var first time.Time
		for _, due := range pending {
			if first.IsZero() || due.Before(first) {
				first = due
			}
		}
		timer.Reset(max(time.Until(first), 0))
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !r.match(ev.Name) {
				continue
			}
			logx.Logger().Debug("fragment changed", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = time.Now().Add(cfg.Debounce)
			timer.Stop()
			arm()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logx.Logger().Warn("watch error", "dir", cfg.Dir, "err", err)

		case <-timer.C:
			now := time.Now()
			var due []string
			for p, t := range pending {
				if !t.After(now) {
					due = append(due, p)
				}
			}
			sort.Strings(due)
			for _, p := range due {
				delete(pending, p)
				if err := r.load(p); err != nil {
					return err
				}
			}
			arm()
		}
	}
}

type runner struct {
	cfg   Config
	ld    pipeline.Loader
	visit func(pipeline.Item) error
	seen  *runutil.LRUSet[string]
}

func (r *runner) match(path string) bool {
	if r.cfg.Pattern == "" {
		return true
	}
	ok, _ := filepath.Match(r.cfg.Pattern, filepath.Base(path))
	return ok
}

func (r *runner) scan() ([]string, error) {
	ents, err := os.ReadDir(r.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(r.cfg.Dir, e.Name())
		if r.match(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// load hands one file version to visit. Files that vanished or were
// already delivered at the same size and mtime are skipped.
func (r *runner) load(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		logx.Logger().Debug("fragment gone", "path", path, "err", err)
		return nil
	}
	key := fmt.Sprintf("%s|%d|%d", path, fi.Size(), fi.ModTime().UnixNano())
	if r.seen.Add(key) {
		logx.Logger().Debug("fragment unchanged", "path", path)
		return nil
	}

	ctxs, err := r.ld.Load(path)
	if err != nil {
		// let a fixed rewrite with the same size and mtime through
		r.seen.Remove(key)
		return r.visit(pipeline.Item{Source: path, Err: err})
	}
	for i, c := range ctxs {
		if err := r.visit(pipeline.Item{Source: path, Index: i, Ctx: c}); err != nil {
			pipeline.DestroyAll(ctxs[i+1:])
			return err
		}
	}
	return nil
}
