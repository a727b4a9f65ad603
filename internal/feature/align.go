package feature

// Alignment is one sequence aligned to the reference; the reference itself
// is normally the context's master alignment.
type Alignment struct {
	Any

	SequenceSpan Span
}

func NewAlignment(name string, span Span) *Alignment {
	al := &Alignment{SequenceSpan: span}
	al.init(al, LevelAlign, name, AlignID(name))
	return al
}

func (al *Alignment) AsAny() *Any {
	if al == nil {
		return nil
	}
	return &al.Any
}

func (al *Alignment) Context() *Context {
	c, _ := al.parent.(*Context)
	return c
}

func (al *Alignment) Block(id ID) *Block {
	b, _ := al.Child(id).(*Block)
	return b
}

func (al *Alignment) Blocks() []*Block { return childrenAs[*Block](&al.Any) }
