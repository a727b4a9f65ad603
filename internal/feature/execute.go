// internal/feature/execute.go
package feature

import (
	"errors"
	"fmt"

	"annotree/internal/logx"
)

// Action tells Execute whether to visit a node's children.
type Action uint8

const (
	Continue Action = iota
	DontDescend
)

// Verdict is a callback's answer for one node. Delete asks a mutating
// traversal to detach the node from its parent once the callbacks for it
// have run; read-only traversals ignore it.
type Verdict struct {
	Action Action
	Delete bool
}

var (
	OK       = Verdict{}
	OKDelete = Verdict{Delete: true}
	Prune    = Verdict{Action: DontDescend}
)

// VisitFunc is called once per node. A non-nil error stops the traversal.
type VisitFunc func(n Node) (Verdict, error)

// Mutation is the kind of structural change a traversal may make to the
// tree it walks.
type Mutation uint8

const (
	// ReadOnly traversals never detach nodes.
	ReadOnly Mutation = iota
	// RemoveSafe detaches nodes whose verdict asks for deletion.
	RemoveSafe
	// StealSafe detaches them and passes each one to ExecConfig.Steal,
	// which takes over ownership.
	StealSafe
)

func (m Mutation) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case RemoveSafe:
		return "remove-safe"
	case StealSafe:
		return "steal-safe"
	}
	return fmt.Sprintf("mutation(%d)", m)
}

type ExecConfig struct {
	// Stop is the deepest level visited.
	Stop Level
	// IncludeContext visits the Context itself as well as its descendants.
	IncludeContext bool
	Mutation       Mutation

	// Pre runs before a node's children, Post after them. Post is only
	// called for nodes whose children were visited.
	Pre  VisitFunc
	Post VisitFunc
	// Steal receives detached nodes in StealSafe mode.
	Steal func(n Node) error
}

// Execute walks the tree containing start, top down from its Context, in
// child insertion order. Children are snapshotted before each pass so that
// detaching nodes never skips or repeats a sibling.
func Execute(start Node, cfg ExecConfig) error {
	ctx := Root(start)
	if ctx == nil {
		return fmt.Errorf("%w: execute: node is not rooted in a context", ErrArgument)
	}
	x, err := newExecutor(cfg)
	if err != nil {
		return err
	}
	if cfg.IncludeContext {
		_, err = x.visit(ctx)
	} else if cfg.Stop > LevelContext {
		err = x.children(ctx)
	}
	return x.finish(err)
}

// ExecuteSubset runs the traversal from n alone, without its siblings or
// ancestors. n must not lie below cfg.Stop.
func ExecuteSubset(n Node, cfg ExecConfig) error {
	a := anyOf(n)
	if !a.Valid() {
		return fmt.Errorf("%w: execute subset: invalid node", ErrArgument)
	}
	if a.level > cfg.Stop {
		return fmt.Errorf("%w: %s %q is below stop level %s", ErrStructural, a.level, a.id, cfg.Stop)
	}
	x, err := newExecutor(cfg)
	if err != nil {
		return err
	}
	del, err := x.visit(n)
	if err == nil && del && cfg.Mutation != ReadOnly && a.parent != nil {
		p := a.parent.AsAny()
		p.dropChildren(map[ID]struct{}{a.id: {}})
		err = x.detached(p, n)
	}
	return x.finish(err)
}

type executor struct {
	cfg ExecConfig
}

func newExecutor(cfg ExecConfig) (*executor, error) {
	if !cfg.Stop.Valid() {
		return nil, fmt.Errorf("%w: execute: bad stop level %s", ErrArgument, cfg.Stop)
	}
	if cfg.Mutation == StealSafe && cfg.Steal == nil {
		return nil, fmt.Errorf("%w: execute: steal-safe traversal without a Steal hook", ErrArgument)
	}
	return &executor{cfg: cfg}, nil
}

func (x *executor) finish(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExecError
	if errors.As(err, &ee) {
		logx.Logger().Error("feature traversal stopped", "level", ee.Level.String(), "id", string(ee.ID), "err", ee.Err)
	}
	return err
}

func (x *executor) fail(n Node, err error) error {
	var ee *ExecError
	if errors.As(err, &ee) {
		return err
	}
	a := n.AsAny()
	return &ExecError{Level: a.level, ID: a.id, Err: err}
}

// visit runs the callbacks for n and its subtree and reports whether n
// should be deleted.
func (x *executor) visit(n Node) (bool, error) {
	v := OK
	if x.cfg.Pre != nil {
		var err error
		if v, err = x.cfg.Pre(n); err != nil {
			return false, x.fail(n, err)
		}
	}
	a := n.AsAny()
	if v.Action == DontDescend || a.level >= x.cfg.Stop || a.level == LevelFeature {
		return v.Delete, nil
	}
	if err := x.children(n); err != nil {
		return false, err
	}
	if x.cfg.Post != nil {
		pv, err := x.cfg.Post(n)
		if err != nil {
			return false, x.fail(n, err)
		}
		v.Delete = v.Delete || pv.Delete
	}
	return v.Delete, nil
}

func (x *executor) children(n Node) error {
	a := n.AsAny()
	if a.children == nil {
		return nil
	}
	keys := append([]ID(nil), a.children.Keys...)
	pre := len(keys)
	var doomed map[ID]struct{}
	var err error
	for _, k := range keys {
		c, ok := a.children.AtTry(k)
		if !ok {
			continue
		}
		var del bool
		if del, err = x.visit(c); err != nil {
			break
		}
		if !del || x.cfg.Mutation == ReadOnly {
			continue
		}
		if doomed == nil {
			doomed = make(map[ID]struct{})
		}
		doomed[k] = struct{}{}
		a.unlinked(c)
		if x.cfg.Mutation == StealSafe {
			if err = x.cfg.Steal(c); err != nil {
				err = x.fail(c, err)
				break
			}
		}
	}
	a.dropChildren(doomed)
	if post := a.children.Len(); post+len(doomed) != pre {
		x.inconsistent(a, pre, post, len(doomed))
	}
	return err
}

// detached finishes removing n from p outside a child pass.
func (x *executor) detached(p *Any, n Node) error {
	p.unlinked(n)
	if x.cfg.Mutation == StealSafe {
		if err := x.cfg.Steal(n); err != nil {
			return x.fail(n, err)
		}
	}
	return nil
}

func (x *executor) inconsistent(a *Any, pre, post, removed int) {
	err := fmt.Errorf("%w: %s %q had %d children, %d removed, %d left",
		ErrConsistency, a.level, a.id, pre, removed, post)
	if strictConsistency {
		panic(err)
	}
	logx.Logger().Error("child table changed outside traversal", "err", err)
}
