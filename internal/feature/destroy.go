package feature

// Destroy releases a node.
//
// For a diff Context only the nodes recorded in its side table (and the
// context itself) are released; borrowed nodes stay intact in their live
// tree. For any other node the whole subtree is released, after detaching
// it from its parent. Destroy is a no-op on nil and on nodes already
// destroyed.
func Destroy(n Node) {
	a := anyOf(n)
	if a == nil || a.destroyed {
		return
	}
	if c, ok := n.(*Context); ok && c.diff {
		for o := range c.owned {
			release(o.AsAny())
		}
		c.owned = nil
		release(a)
		return
	}
	if p := anyOf(a.parent); p != nil && p.children != nil {
		if cur, ok := p.children.AtTry(a.id); ok && cur == n {
			_ = p.RemoveChild(n)
		}
	}
	destroyTree(a)
}

func destroyTree(a *Any) {
	if a.children != nil {
		for _, c := range a.children.Values {
			ca := c.AsAny()
			// borrowed children belong to another tree
			if ca.parent == a.self {
				destroyTree(ca)
			}
		}
	}
	release(a)
}

// release drops a single node's links without touching its children.
func release(a *Any) {
	if a.children != nil {
		a.children.Reset()
	}
	a.parent = nil
	a.destroyed = true
	switch v := a.self.(type) {
	case *Context:
		v.MasterAlign = nil
	case *Block:
		v.DNA = nil
	case *Feature:
		v.Detail = nil
	}
}
