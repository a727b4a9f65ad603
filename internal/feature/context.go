package feature

import "fmt"

// Context is the root of a feature tree: one reference sequence region and
// its alignments.
//
// A diff Context (see NewDiffContext) is a view over another tree: it holds
// borrowed references to live nodes plus copies of ancestors it owns
// itself. Only the owned nodes are released when it is destroyed.
type Context struct {
	Any

	// MasterAlign is one of the context's alignments or nil.
	MasterAlign *Alignment

	// ParentSpan is the reference region this context covers.
	ParentSpan Span
	Sequence   string

	// RequestedSets names the feature sets asked for from producers.
	RequestedSets []ID
	// SourceSets names the feature sets that actually arrived. Used on
	// diff contexts.
	SourceSets []ID

	diff  bool
	owned map[Node]struct{}
}

// NewContext returns an empty live context for a named sequence region.
func NewContext(sequence string, span Span) *Context {
	c := &Context{ParentSpan: span, Sequence: sequence}
	c.init(c, LevelContext, sequence, ID(sequence))
	return c
}

// NewDiffContext returns an empty diff context shaped like ref.
func NewDiffContext(ref *Context) *Context {
	c := &Context{diff: true, owned: make(map[Node]struct{})}
	if ref != nil {
		c.ParentSpan = ref.ParentSpan
		c.Sequence = ref.Sequence
		c.init(c, LevelContext, ref.originalID, ref.id)
	} else {
		c.init(c, LevelContext, "", "")
	}
	return c
}

func (c *Context) AsAny() *Any {
	if c == nil {
		return nil
	}
	return &c.Any
}

// IsDiff reports whether c is a diff context.
func (c *Context) IsDiff() bool { return c != nil && c.diff }

// Own records n as a node the diff context is responsible for releasing.
func (c *Context) Own(n Node) {
	if !c.IsDiff() || n == nil {
		return
	}
	c.owned[n] = struct{}{}
}

// Owns reports whether n is in the diff context's side table.
func (c *Context) Owns(n Node) bool {
	if !c.IsDiff() {
		return false
	}
	_, ok := c.owned[n]
	return ok
}

// Borrows reports whether n is reachable from diff context c but owned by
// some other tree.
func (c *Context) Borrows(n Node) bool {
	if !c.IsDiff() || n == nil || Node(c) == n || c.Owns(n) {
		return false
	}
	found := false
	_ = Execute(c, ExecConfig{Stop: anyOf(n).level, Pre: func(m Node) (Verdict, error) {
		if m == n {
			found = true
		}
		if found {
			return Prune, nil
		}
		return OK, nil
	}})
	return found
}

// OwnedCount is the size of the side table.
func (c *Context) OwnedCount() int { return len(c.owned) }

// Link attaches child under parent inside diff context c without changing
// child's parent. parent must be c itself or a node c owns.
func (c *Context) Link(parent, child Node) error {
	if !c.IsDiff() {
		return fmt.Errorf("%w: link into a non-diff context", ErrArgument)
	}
	if parent != Node(c) && !c.Owns(parent) {
		return fmt.Errorf("%w: link parent is not owned by the diff", ErrArgument)
	}
	return anyOf(parent).link(child)
}

// AddOwned attaches an owned copy under parent and records it in the side
// table.
func (c *Context) AddOwned(parent, child Node) error {
	if !c.IsDiff() {
		return fmt.Errorf("%w: add owned node to a non-diff context", ErrArgument)
	}
	if err := anyOf(parent).AddChild(child); err != nil {
		return err
	}
	c.Own(child)
	return nil
}

// Alignment returns the child alignment with the given id, or nil.
func (c *Context) Alignment(id ID) *Alignment {
	al, _ := c.Child(id).(*Alignment)
	return al
}

// Alignments returns the alignments in insertion order.
func (c *Context) Alignments() []*Alignment { return childrenAs[*Alignment](&c.Any) }

// SetMaster makes al the master alignment. al must be a child of c.
func (c *Context) SetMaster(al *Alignment) error {
	if al == nil {
		c.MasterAlign = nil
		return nil
	}
	if c.Alignment(al.id) != al {
		return fmt.Errorf("%w: master alignment %q is not a child of %q", ErrNotFound, al.id, c.id)
	}
	c.MasterAlign = al
	return nil
}

// AddRequested appends set ids not already on the requested list.
func (c *Context) AddRequested(ids ...ID) {
	c.RequestedSets = appendUnique(c.RequestedSets, ids...)
}

// AddSource appends set ids not already on the source list.
func (c *Context) AddSource(ids ...ID) {
	c.SourceSets = appendUnique(c.SourceSets, ids...)
}

func appendUnique(dst []ID, ids ...ID) []ID {
	for _, id := range ids {
		dup := false
		for _, have := range dst {
			if have == id {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, id)
		}
	}
	return dst
}

func childrenAs[T Node](a *Any) []T {
	if a == nil || a.children == nil {
		return nil
	}
	out := make([]T, 0, a.children.Len())
	for _, n := range a.children.Values {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
