// internal/merge/merge.go
package merge

import (
	"fmt"
	"strings"

	"annotree/internal/feature"
	"annotree/internal/logx"
)

// Code is the outcome of a merge or erase.
type Code uint8

const (
	CodeError Code = iota
	CodeOK
	// CodeNone means the call succeeded but changed nothing.
	CodeNone
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeNone:
		return "none"
	default:
		return "error"
	}
}

// Stats counts what a merge added to the view. Nested nodes of a spliced
// subtree are included.
type Stats struct {
	FeaturesAdded int
	SetsAdded     int
	BlocksAdded   int
	AlignsAdded   int
}

// Result of Merge. Diff is nil unless Code is CodeOK.
type Result struct {
	View  *feature.Context
	Diff  *feature.Context
	Stats Stats
	Code  Code
}

var (
	absent  = feature.Verdict{Action: feature.DontDescend, Delete: true}
	present = feature.OKDelete
)

// Merge folds fresh into view and returns the diff: a context holding
// exactly the nodes that were new to view.
//
// fresh is consumed: nodes new to view are moved there (and borrowed by the
// diff), the rest are destroyed. A nil view makes fresh the view. Arguments
// are validated before anything is moved; on a validation error view is
// untouched and fresh is left as it was. The requested set names of fresh
// are added to view only when the merge returns CodeOK.
func Merge(view, fresh *feature.Context) (Result, error) {
	if err := validateMerge(view, fresh); err != nil {
		return Result{View: view, Code: CodeError}, err
	}
	if view == nil {
		return adopt(fresh), nil
	}

	m := &merger{
		view:        view,
		fresh:       fresh,
		diff:        feature.NewDiffContext(view),
		freshMaster: fresh.MasterAlign,
		requested:   fresh.RequestedSets,
	}
	err := feature.Execute(fresh, feature.ExecConfig{
		Stop:     feature.LevelFeature,
		Mutation: feature.StealSafe,
		Pre:      m.pre,
		Steal:    m.steal,
	})
	m.fixMaster()
	if err != nil {
		// nodes moved before the failure stay in view
		feature.Destroy(m.diff)
		return Result{View: view, Stats: m.stats, Code: CodeError}, fmt.Errorf("merge: %w", err)
	}
	feature.Destroy(fresh)

	log := logx.Logger()
	if !m.added {
		feature.Destroy(m.diff)
		log.Debug("merge added nothing", "sequence", view.Sequence)
		return Result{View: view, Stats: m.stats, Code: CodeNone}, nil
	}
	log.Debug("merged context",
		"sequence", view.Sequence,
		"aligns", m.stats.AlignsAdded,
		"blocks", m.stats.BlocksAdded,
		"sets", m.stats.SetsAdded,
		"features", m.stats.FeaturesAdded)
	view.AddRequested(m.requested...)
	return Result{View: view, Diff: m.diff, Stats: m.stats, Code: CodeOK}, nil
}

func validateMerge(view, fresh *feature.Context) error {
	switch {
	case fresh == nil || !fresh.Valid():
		return fmt.Errorf("%w: merge: missing new context", feature.ErrArgument)
	case fresh.IsDiff():
		return fmt.Errorf("%w: merge: new context is a diff", feature.ErrArgument)
	case view == fresh:
		return fmt.Errorf("%w: merge: context merged into itself", feature.ErrArgument)
	}
	if view != nil {
		if !view.Valid() || view.IsDiff() {
			return fmt.Errorf("%w: merge: view is not a live context", feature.ErrArgument)
		}
		if view.Sequence != "" && fresh.Sequence != "" && !strings.EqualFold(view.Sequence, fresh.Sequence) {
			return fmt.Errorf("%w: merge: sequence %q does not match view sequence %q",
				feature.ErrArgument, fresh.Sequence, view.Sequence)
		}
	}
	if err := feature.Check(fresh); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	if len(fresh.RequestedSets) == 0 {
		return nil
	}
	requested := make(map[feature.ID]bool, len(fresh.RequestedSets))
	for _, id := range fresh.RequestedSets {
		requested[id] = true
	}
	for _, al := range fresh.Alignments() {
		for _, b := range al.Blocks() {
			for _, fs := range b.FeatureSets() {
				if !requested[fs.ID()] {
					return fmt.Errorf("%w: merge: feature set %q was not requested", feature.ErrArgument, fs.ID())
				}
			}
		}
	}
	return nil
}

// adopt makes fresh the view. The diff borrows every alignment.
func adopt(fresh *feature.Context) Result {
	diff := feature.NewDiffContext(fresh)
	var st Stats
	for _, al := range fresh.Alignments() {
		for _, b := range al.Blocks() {
			for _, fs := range b.FeatureSets() {
				diff.AddSource(fs.ID())
			}
		}
		st.AlignsAdded++
		countSubtree(&st, al)
		for _, b := range al.Blocks() {
			st.SetsAdded += addEmptySets(fresh.RequestedSets, b, b, nil, nil)
		}
		// ids are unique under fresh, so linking cannot collide
		_ = diff.Link(diff, al)
	}
	diff.MasterAlign = fresh.MasterAlign
	return Result{View: fresh, Diff: diff, Stats: st, Code: CodeOK}
}

type merger struct {
	view, fresh, diff *feature.Context
	freshMaster       *feature.Alignment
	requested         []feature.ID

	// current position in view, and the owned copies in diff
	viewAlign *feature.Alignment
	viewBlock *feature.Block
	viewSet   *feature.FeatureSet
	diffAlign *feature.Alignment
	diffBlock *feature.Block
	diffSet   *feature.FeatureSet

	stats Stats
	added bool
}

func (m *merger) pre(n feature.Node) (feature.Verdict, error) {
	switch n := n.(type) {
	case *feature.Alignment:
		m.viewAlign, m.diffAlign = m.view.Alignment(n.ID()), nil
		if m.viewAlign == nil {
			return absent, nil
		}
		cp := feature.Copy(n).(*feature.Alignment)
		if err := m.diff.AddOwned(m.diff, cp); err != nil {
			return feature.OK, err
		}
		m.diffAlign = cp

	case *feature.Block:
		if m.viewAlign == nil {
			return feature.OK, fmt.Errorf("%w: block %q outside a merged alignment", feature.ErrStructural, n.ID())
		}
		m.viewBlock, m.diffBlock = m.viewAlign.Block(n.ID()), nil
		if m.viewBlock == nil {
			return absent, nil
		}
		if !m.viewBlock.HasDNA() && n.HasDNA() {
			m.viewBlock.DNA = n.DNA
		}
		cp := feature.Copy(n).(*feature.Block)
		if err := m.diff.AddOwned(m.diffAlign, cp); err != nil {
			return feature.OK, err
		}
		m.diffBlock = cp
		if k := addEmptySets(m.requested, m.viewBlock, n, m.diff, cp); k > 0 {
			m.stats.SetsAdded += k
			m.added = true
		}

	case *feature.FeatureSet:
		if m.viewBlock == nil {
			return feature.OK, fmt.Errorf("%w: feature set %q outside a merged block", feature.ErrStructural, n.ID())
		}
		m.diff.AddSource(n.ID())
		m.viewSet, m.diffSet = m.viewBlock.FeatureSet(n.ID()), nil
		if m.viewSet == nil {
			return absent, nil
		}
		m.viewSet.Loaded = feature.MergeLoaded(m.viewSet.Loaded, n.Loaded)
		if m.viewSet.Style == nil {
			m.viewSet.Style = n.Style
		}
		cp := feature.Copy(n).(*feature.FeatureSet)
		if err := m.diff.AddOwned(m.diffBlock, cp); err != nil {
			return feature.OK, err
		}
		m.diffSet = cp
	}
	return present, nil
}

// steal receives each node detached from fresh, after its subtree (if it
// was descended into) has been handled.
func (m *merger) steal(n feature.Node) error {
	switch n := n.(type) {
	case *feature.Alignment:
		if m.view.Alignment(n.ID()) != nil {
			feature.Destroy(n)
			return nil
		}
		if err := m.splice(m.view, m.diff, n); err != nil {
			return err
		}
		m.stats.AlignsAdded++
		countSubtree(&m.stats, n)
		for _, b := range n.Blocks() {
			m.addSources(b)
		}
		for _, b := range n.Blocks() {
			m.stats.SetsAdded += addEmptySets(m.requested, b, b, nil, nil)
		}

	case *feature.Block:
		if m.viewAlign.Block(n.ID()) != nil {
			feature.Destroy(n)
			return nil
		}
		if err := m.splice(m.viewAlign, m.diffAlign, n); err != nil {
			return err
		}
		m.stats.BlocksAdded++
		countSubtree(&m.stats, n)
		m.addSources(n)
		m.stats.SetsAdded += addEmptySets(m.requested, n, n, nil, nil)

	case *feature.FeatureSet:
		if m.viewBlock.FeatureSet(n.ID()) != nil {
			feature.Destroy(n)
			return nil
		}
		if err := m.splice(m.viewBlock, m.diffBlock, n); err != nil {
			return err
		}
		m.stats.SetsAdded++
		m.stats.FeaturesAdded += n.NumChildren()

	case *feature.Feature:
		if m.viewSet.Feature(n.ID()) != nil {
			feature.Destroy(n)
			return nil
		}
		if n.Style == nil {
			n.Style = m.viewSet.Style
		}
		if err := m.splice(m.viewSet, m.diffSet, n); err != nil {
			return err
		}
		m.stats.FeaturesAdded++
	}
	return nil
}

// splice moves n under the view parent and links it into the matching diff
// parent.
func (m *merger) splice(viewParent, diffParent, n feature.Node) error {
	if err := viewParent.AsAny().AddChild(n); err != nil {
		return err
	}
	if err := m.diff.Link(diffParent, n); err != nil {
		return err
	}
	m.added = true
	return nil
}

// fixMaster keeps the master alignments of view and diff pointing at one of
// their own children.
func (m *merger) fixMaster() {
	if ma := m.view.MasterAlign; ma != nil && m.view.Alignment(ma.ID()) != ma {
		m.view.MasterAlign = nil
	}
	if m.freshMaster == nil {
		return
	}
	if m.view.MasterAlign == nil {
		m.view.MasterAlign = m.view.Alignment(m.freshMaster.ID())
	}
	if m.diff.Valid() {
		m.diff.MasterAlign = m.diff.Alignment(m.freshMaster.ID())
	}
}

// addEmptySets records requested sets that ref did not deliver: they are
// created empty in target with the fetched region as their loaded span, or,
// when target already has them, the region is added to their loaded list.
// Names holding a ':' are not real sets and are skipped. Created sets are
// linked into diffBlock when given. It returns the number of sets created.
func addEmptySets(requested []feature.ID, target, ref *feature.Block, diff *feature.Context, diffBlock *feature.Block) int {
	region := ref.Mapping.Parent
	created := 0
	for _, id := range requested {
		if strings.Contains(string(id), ":") || ref.FeatureSet(id) != nil {
			continue
		}
		if fs := target.FeatureSet(id); fs != nil {
			fs.AddLoaded(region)
			continue
		}
		fs := feature.NewFeatureSet(string(id))
		fs.AddLoaded(region)
		if err := target.AddChild(fs); err != nil {
			continue
		}
		if diff != nil && diffBlock != nil {
			_ = diff.Link(diffBlock, fs)
		}
		created++
	}
	return created
}

// addSources records the sets of a spliced block as arrived.
func (m *merger) addSources(b *feature.Block) {
	for _, fs := range b.FeatureSets() {
		m.diff.AddSource(fs.ID())
	}
}

func countSubtree(st *Stats, n feature.Node) {
	switch n := n.(type) {
	case *feature.Alignment:
		st.BlocksAdded += n.NumChildren()
		for _, b := range n.Blocks() {
			st.SetsAdded += b.NumChildren()
		}
	case *feature.Block:
		st.SetsAdded += n.NumChildren()
	}
	st.FeaturesAdded += feature.CountFeatures(n)
}
