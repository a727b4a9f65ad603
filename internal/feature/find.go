package feature

// FindByPath walks down from root following ids, one per level.
func FindByPath(root Node, ids ...ID) Node {
	cur := root
	for _, id := range ids {
		a := anyOf(cur)
		if a == nil {
			return nil
		}
		cur = a.Child(id)
	}
	if anyOf(cur) == nil {
		return nil
	}
	return cur
}

// Path returns the ids of n's ancestors below the Context, then n's own id.
// For a Context it returns nil.
func Path(n Node) []ID {
	var ids []ID
	for a := anyOf(n); a != nil && a.level > LevelContext; a = anyOf(a.parent) {
		ids = append(ids, a.id)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// FindFromFeature locates in ctx the node that occupies the same position
// as query does in its own tree.
func FindFromFeature(ctx *Context, query Node) Node {
	if ctx == nil || anyOf(query) == nil {
		return nil
	}
	return FindByPath(ctx, Path(query)...)
}

// FindDescendant returns the first node at level with the given id in the
// subtree under n, in depth-first insertion order.
func FindDescendant(n Node, level Level, id ID) Node {
	a := anyOf(n)
	if a == nil || level <= a.level {
		return nil
	}
	if a.level+1 == level {
		return a.Child(id)
	}
	if a.children == nil {
		return nil
	}
	for _, c := range a.children.Values {
		if hit := FindDescendant(c, level, id); hit != nil {
			return hit
		}
	}
	return nil
}

// CountFeatures counts the features in the subtree under n, n included.
func CountFeatures(n Node) int {
	a := anyOf(n)
	switch {
	case a == nil:
		return 0
	case a.level == LevelFeature:
		return 1
	case a.level == LevelFeatureSet:
		return a.NumChildren()
	}
	total := 0
	for _, c := range a.children.Values {
		total += CountFeatures(c)
	}
	return total
}

// Root returns the Context at the top of n's ancestor chain, or nil.
func Root(n Node) *Context {
	a := anyOf(n)
	for a != nil && a.parent != nil {
		a = a.parent.AsAny()
	}
	if a == nil {
		return nil
	}
	c, _ := a.self.(*Context)
	return c
}
