package feature

import "slices"

// Copy duplicates a single node: same level, ids and attributes, no parent,
// no children. Feature details, DNA and Loaded lists are deep copied; Style
// pointers are shared. Copying a Context always yields a live (non-diff)
// context with no master alignment.
func Copy(n Node) Node {
	switch v := n.(type) {
	case *Context:
		if v == nil {
			return nil
		}
		c := &Context{
			ParentSpan:    v.ParentSpan,
			Sequence:      v.Sequence,
			RequestedSets: slices.Clone(v.RequestedSets),
			SourceSets:    slices.Clone(v.SourceSets),
		}
		c.init(c, LevelContext, v.originalID, v.id)
		return c
	case *Alignment:
		if v == nil {
			return nil
		}
		al := &Alignment{SequenceSpan: v.SequenceSpan}
		al.init(al, LevelAlign, v.originalID, v.id)
		return al
	case *Block:
		if v == nil {
			return nil
		}
		b := &Block{Mapping: v.Mapping, DNA: slices.Clone(v.DNA), Revcomped: v.Revcomped}
		b.init(b, LevelBlock, v.originalID, v.id)
		return b
	case *FeatureSet:
		if v == nil {
			return nil
		}
		fs := &FeatureSet{Style: v.Style, Loaded: slices.Clone(v.Loaded)}
		fs.init(fs, LevelFeatureSet, v.originalID, v.id)
		return fs
	case *Feature:
		if v == nil {
			return nil
		}
		f := &Feature{Span: v.Span, Strand: v.Strand, Score: v.Score, Style: v.Style}
		if v.Detail != nil {
			f.Detail = v.Detail.clone()
		}
		f.init(f, LevelFeature, v.originalID, v.id)
		return f
	}
	return nil
}

// CopyWithParents copies n and each of its ancestors up to the Context and
// wires the copies into a single path. The returned context owns the whole
// path; the copy of n has no children. It returns nil when n is not rooted
// in a Context.
func CopyWithParents(n Node) *Context {
	a := anyOf(n)
	if !a.Valid() {
		return nil
	}
	cur := Copy(n)
	for p := a.parent; p != nil; p = p.AsAny().parent {
		up := Copy(p)
		if err := up.AsAny().AddChild(cur); err != nil {
			return nil
		}
		cur = up
	}
	c, _ := cur.(*Context)
	return c
}

// Clone deep copies the subtree below n. The result has no parent.
func Clone(n Node) Node {
	c := Copy(n)
	if c == nil {
		return nil
	}
	for _, child := range anyOf(n).Children() {
		if err := c.AsAny().AddChild(Clone(child)); err != nil {
			return nil
		}
	}
	if src, ok := n.(*Context); ok && src.MasterAlign != nil {
		dst := c.(*Context)
		dst.MasterAlign = dst.Alignment(src.MasterAlign.id)
	}
	return c
}
