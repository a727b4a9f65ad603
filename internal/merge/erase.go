package merge

import (
	"fmt"

	"annotree/internal/feature"
	"annotree/internal/logx"
)

// EraseStats counts what Erase removed from the view.
type EraseStats struct {
	FeaturesErased int
	// NodesPruned counts alignments, blocks and sets removed because
	// erasing left them empty.
	NodesPruned int
}

// EraseResult of Erase. Diff holds the erased features and copies of the
// pruned nodes under owned copies of their ancestors; it is nil unless Code
// is CodeOK. Pruning alone, with no feature erased, is still CodeOK.
type EraseResult struct {
	View  *feature.Context
	Diff  *feature.Context
	Stats EraseStats
	Code  Code
}

// Erase removes from view every feature named in remove. A feature set in
// remove with no features erases all features of the matching view set.
// Features absent from view are logged and skipped. Any alignment, block or
// set left empty in view is pruned, including a named set that was already
// empty.
//
// The remove tree is consumed: nodes matched against view are detached
// from it as they are handled.
func Erase(view, remove *feature.Context) (EraseResult, error) {
	if err := validateErase(view, remove); err != nil {
		return EraseResult{View: view, Code: CodeError}, err
	}
	e := &eraser{view: view, diff: feature.NewDiffContext(view)}
	err := feature.Execute(remove, feature.ExecConfig{
		Stop:     feature.LevelFeature,
		Mutation: feature.RemoveSafe,
		Pre:      e.pre,
		Post:     e.post,
	})
	if err != nil {
		// features already moved out of view go with the diff
		feature.Destroy(e.diff)
		return EraseResult{View: view, Stats: e.stats, Code: CodeError}, fmt.Errorf("erase: %w", err)
	}
	if e.stats.FeaturesErased+e.stats.NodesPruned == 0 {
		feature.Destroy(e.diff)
		return EraseResult{View: view, Stats: e.stats, Code: CodeNone}, nil
	}
	logx.Logger().Debug("erased features",
		"sequence", view.Sequence,
		"features", e.stats.FeaturesErased,
		"pruned", e.stats.NodesPruned)
	return EraseResult{View: view, Diff: e.diff, Stats: e.stats, Code: CodeOK}, nil
}

func validateErase(view, remove *feature.Context) error {
	switch {
	case view == nil || !view.Valid() || view.IsDiff():
		return fmt.Errorf("%w: erase: view is not a live context", feature.ErrArgument)
	case remove == nil || !remove.Valid():
		return fmt.Errorf("%w: erase: missing remove context", feature.ErrArgument)
	case remove.IsDiff():
		return fmt.Errorf("%w: erase: remove context is a diff", feature.ErrArgument)
	case view == remove:
		return fmt.Errorf("%w: erase: context erased from itself", feature.ErrArgument)
	}
	if err := feature.Check(remove); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	return nil
}

type eraser struct {
	view, diff *feature.Context

	viewAlign *feature.Alignment
	viewBlock *feature.Block
	viewSet   *feature.FeatureSet
	// diff path copies, made on first use
	diffAlign *feature.Alignment
	diffBlock *feature.Block
	diffSet   *feature.FeatureSet

	stats EraseStats
}

func (e *eraser) pre(n feature.Node) (feature.Verdict, error) {
	log := logx.Logger()
	switch n := n.(type) {
	case *feature.Alignment:
		e.viewAlign, e.diffAlign = e.view.Alignment(n.ID()), nil
		if e.viewAlign == nil {
			log.Warn("alignment not in view, nothing to erase", "align", string(n.ID()))
			return feature.Prune, nil
		}

	case *feature.Block:
		e.viewBlock, e.diffBlock = e.viewAlign.Block(n.ID()), nil
		if e.viewBlock == nil {
			log.Warn("block not in view, nothing to erase", "block", string(n.ID()))
			return feature.Prune, nil
		}

	case *feature.FeatureSet:
		e.viewSet, e.diffSet = e.viewBlock.FeatureSet(n.ID()), nil
		if e.viewSet == nil {
			log.Warn("feature set not in view, nothing to erase", "set", string(n.ID()))
			return feature.Prune, nil
		}
		if n.NumChildren() == 0 {
			return feature.OKDelete, e.eraseAll()
		}

	case *feature.Feature:
		f := e.viewSet.Feature(n.ID())
		if f == nil {
			log.Warn("feature absent from view, cannot erase", "feature", string(n.ID()))
			return feature.OK, nil
		}
		if err := e.viewSet.RemoveChild(f); err != nil {
			return feature.OK, err
		}
		if err := e.moveToDiff(f); err != nil {
			return feature.OK, err
		}
		return feature.OKDelete, nil
	}
	return feature.OK, nil
}

// post prunes view nodes left empty and reports remove-tree nodes that
// have been fully consumed.
func (e *eraser) post(n feature.Node) (feature.Verdict, error) {
	var err error
	switch n.(type) {
	case *feature.FeatureSet:
		if e.viewSet != nil && e.viewSet.NumChildren() == 0 {
			err = e.prune(e.viewBlock, e.viewSet)
		}
		e.viewSet, e.diffSet = nil, nil
	case *feature.Block:
		if e.viewBlock != nil && e.viewBlock.NumChildren() == 0 {
			err = e.prune(e.viewAlign, e.viewBlock)
		}
		e.viewBlock, e.diffBlock = nil, nil
	case *feature.Alignment:
		if e.viewAlign != nil && e.viewAlign.NumChildren() == 0 {
			err = e.prune(e.view, e.viewAlign)
		}
		e.viewAlign, e.diffAlign = nil, nil
	}
	if err != nil {
		return feature.OK, err
	}
	return feature.Verdict{Delete: n.AsAny().NumChildren() == 0}, nil
}

// prune removes n from view and leaves a copy of it in the diff.
func (e *eraser) prune(parent, n feature.Node) error {
	if err := e.ensureDiffPath(n.AsAny().Level()); err != nil {
		return err
	}
	if err := parent.AsAny().RemoveChild(n); err != nil {
		return err
	}
	feature.Destroy(n)
	e.stats.NodesPruned++
	return nil
}

func (e *eraser) eraseAll() error {
	for _, n := range e.viewSet.TakeChildren() {
		if err := e.moveToDiff(n.(*feature.Feature)); err != nil {
			return err
		}
	}
	return nil
}

// moveToDiff files a feature detached from view under the diff path and
// hands its ownership to the diff.
func (e *eraser) moveToDiff(f *feature.Feature) error {
	if err := e.ensureDiffPath(feature.LevelFeatureSet); err != nil {
		return err
	}
	if err := e.diff.AddOwned(e.diffSet, f); err != nil {
		return err
	}
	e.stats.FeaturesErased++
	return nil
}

// ensureDiffPath copies the current view path into the diff down to and
// including level to.
func (e *eraser) ensureDiffPath(to feature.Level) error {
	if e.diffAlign == nil {
		e.diffAlign = feature.Copy(e.viewAlign).(*feature.Alignment)
		if err := e.diff.AddOwned(e.diff, e.diffAlign); err != nil {
			return err
		}
	}
	if to == feature.LevelAlign {
		return nil
	}
	if e.diffBlock == nil {
		e.diffBlock = feature.Copy(e.viewBlock).(*feature.Block)
		e.diffBlock.DNA = nil
		if err := e.diff.AddOwned(e.diffAlign, e.diffBlock); err != nil {
			return err
		}
	}
	if to == feature.LevelBlock {
		return nil
	}
	if e.diffSet == nil {
		e.diffSet = feature.Copy(e.viewSet).(*feature.FeatureSet)
		if err := e.diff.AddOwned(e.diffBlock, e.diffSet); err != nil {
			return err
		}
	}
	return nil
}
