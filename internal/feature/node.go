// internal/feature/node.go
package feature

import (
	"fmt"

	"cogentcore.org/core/base/keylist"
)

// Node is implemented by every level of the hierarchy. The concrete types
// are *Context, *Alignment, *Block, *FeatureSet and *Feature.
type Node interface {
	AsAny() *Any
}

type children = keylist.List[ID, Node]

// Any holds the fields shared by all levels: identity, the non-owning parent
// back reference and the ordered, id-keyed children.
type Any struct {
	level      Level
	self       Node
	parent     Node
	id         ID
	originalID string
	children   *children
	destroyed  bool
}

func (a *Any) init(self Node, level Level, originalID string, id ID) {
	a.level = level
	a.self = self
	a.originalID = originalID
	a.id = id
	if level < LevelFeature {
		a.children = keylist.New[ID, Node]()
	}
}

func (a *Any) Level() Level { return a.level }

// ID is the level-scoped unique id.
func (a *Any) ID() ID { return a.id }

// Name is the original, display-form name.
func (a *Any) Name() string { return a.originalID }

// Parent is nil for a Context and for detached nodes.
func (a *Any) Parent() Node { return a.parent }

// Valid reports whether the node is usable: not destroyed, with a real level.
func (a *Any) Valid() bool { return a != nil && !a.destroyed && a.level.Valid() }

func (a *Any) NumChildren() int { return a.children.Len() }

// Child returns the child with the given id, or nil.
func (a *Any) Child(id ID) Node {
	if a.children == nil {
		return nil
	}
	return a.children.At(id)
}

func (a *Any) HasChild(id ID) bool {
	if a.children == nil {
		return false
	}
	_, ok := a.children.AtTry(id)
	return ok
}

// Children returns a snapshot of the children in insertion order.
func (a *Any) Children() []Node {
	if a.children == nil {
		return nil
	}
	return append([]Node(nil), a.children.Values...)
}

// ChildIDs returns a snapshot of the child ids in insertion order.
func (a *Any) ChildIDs() []ID {
	if a.children == nil {
		return nil
	}
	return append([]ID(nil), a.children.Keys...)
}

// AddChild attaches n under a. The child must be one level below a, detached
// and carry an id not already present among a's children.
func (a *Any) AddChild(n Node) error {
	c := anyOf(n)
	if err := a.checkChild(c); err != nil {
		return err
	}
	if c.parent != nil {
		return fmt.Errorf("%w: %s %q", ErrAttached, c.level, c.id)
	}
	if err := a.children.Add(c.id, n); err != nil {
		return fmt.Errorf("%w: %s %q under %s %q", ErrDuplicate, c.level, c.id, a.level, a.id)
	}
	c.parent = a.self
	return nil
}

// RemoveChild detaches n from a and clears its parent. Removing the master
// alignment of a Context also clears MasterAlign.
func (a *Any) RemoveChild(n Node) error {
	c := anyOf(n)
	if c == nil || a.children == nil {
		return fmt.Errorf("%w: nil node", ErrArgument)
	}
	if cur, ok := a.children.AtTry(c.id); !ok || cur != n {
		return fmt.Errorf("%w: %s %q under %s %q", ErrNotFound, c.level, c.id, a.level, a.id)
	}
	a.children.DeleteByKey(c.id)
	a.unlinked(n)
	return nil
}

// TakeChildren detaches every child of a in one step and returns them in
// order.
func (a *Any) TakeChildren() []Node {
	if a.children == nil {
		return nil
	}
	out := a.children.Values
	a.children.Reset()
	for _, n := range out {
		a.unlinked(n)
	}
	return out
}

// unlinked fixes back references once n has left a's children. Borrowed
// diff children keep the parent they have in the live tree.
func (a *Any) unlinked(n Node) {
	c := n.AsAny()
	if c.parent == a.self {
		c.parent = nil
	}
	if ctx, ok := a.self.(*Context); ok && ctx.MasterAlign != nil && Node(ctx.MasterAlign) == n {
		ctx.MasterAlign = nil
	}
}

// link attaches n as a child of a without touching n's parent.
func (a *Any) link(n Node) error {
	c := anyOf(n)
	if err := a.checkChild(c); err != nil {
		return err
	}
	if err := a.children.Add(c.id, n); err != nil {
		return fmt.Errorf("%w: %s %q under %s %q", ErrDuplicate, c.level, c.id, a.level, a.id)
	}
	return nil
}

// dropChildren removes the given ids in one pass over the list.
func (a *Any) dropChildren(doomed map[ID]struct{}) {
	if len(doomed) == 0 {
		return
	}
	keys := a.children.Keys[:0]
	vals := a.children.Values[:0]
	for i, k := range a.children.Keys {
		if _, ok := doomed[k]; ok {
			continue
		}
		keys = append(keys, k)
		vals = append(vals, a.children.Values[i])
	}
	clear(a.children.Values[len(vals):])
	a.children.Keys, a.children.Values = keys, vals
	a.children.UpdateIndexes()
}

func (a *Any) checkChild(c *Any) error {
	switch {
	case !a.Valid():
		return fmt.Errorf("%w: parent", ErrDestroyed)
	case c == nil:
		return fmt.Errorf("%w: nil node", ErrArgument)
	case !c.Valid():
		return fmt.Errorf("%w: %s %q", ErrDestroyed, c.level, c.id)
	case c.level != a.level+1:
		return fmt.Errorf("%w: cannot add %s under %s", ErrLevel, c.level, a.level)
	}
	return nil
}

// anyOf is AsAny that tolerates nil interfaces and typed nil pointers.
func anyOf(n Node) *Any {
	if n == nil {
		return nil
	}
	return n.AsAny()
}

// Create makes a bare node of the given level and, when parent is non-nil,
// attaches it there.
func Create(level Level, parent Node, originalID string, id ID) (Node, error) {
	var n Node
	switch level {
	case LevelContext:
		c := &Context{}
		c.init(c, level, originalID, id)
		n = c
	case LevelAlign:
		al := &Alignment{}
		al.init(al, level, originalID, id)
		n = al
	case LevelBlock:
		b := &Block{}
		b.init(b, level, originalID, id)
		n = b
	case LevelFeatureSet:
		fs := &FeatureSet{}
		fs.init(fs, level, originalID, id)
		n = fs
	case LevelFeature:
		f := &Feature{}
		f.init(f, level, originalID, id)
		n = f
	default:
		return nil, fmt.Errorf("%w: cannot create %s", ErrArgument, level)
	}
	if parent != nil {
		p := anyOf(parent)
		if p == nil {
			return nil, fmt.Errorf("%w: nil parent", ErrArgument)
		}
		if err := p.AddChild(n); err != nil {
			return nil, err
		}
	}
	return n, nil
}
