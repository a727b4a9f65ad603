package feature

// Style is shared display and semantic metadata for a feature set. Many sets
// and features point at one Style; trees never own it.
type Style struct {
	ID     ID
	Name   string
	Mode   Mode
	Colour string
}

func NewStyle(name string, mode Mode) *Style {
	return &Style{ID: SetID(name), Name: name, Mode: mode}
}

// FeatureSet groups features of one kind (one track) within a block.
type FeatureSet struct {
	Any

	Style *Style
	// Loaded lists the reference regions fetched for this set, sorted and
	// coalesced.
	Loaded []Span
}

func NewFeatureSet(name string) *FeatureSet {
	fs := &FeatureSet{}
	fs.init(fs, LevelFeatureSet, name, SetID(name))
	return fs
}

func (fs *FeatureSet) AsAny() *Any {
	if fs == nil {
		return nil
	}
	return &fs.Any
}

func (fs *FeatureSet) Block() *Block {
	b, _ := fs.parent.(*Block)
	return b
}

func (fs *FeatureSet) Feature(id ID) *Feature {
	f, _ := fs.Child(id).(*Feature)
	return f
}

func (fs *FeatureSet) Features() []*Feature { return childrenAs[*Feature](&fs.Any) }

// AddLoaded records that s has been fetched.
func (fs *FeatureSet) AddLoaded(s Span) { fs.Loaded = InsertSpan(fs.Loaded, s) }

// IsLoaded reports whether [start,end] was fetched in one piece.
func (fs *FeatureSet) IsLoaded(start, end int) bool { return LoadedCovers(fs.Loaded, start, end) }
