package feature

// Mapping places a block of an aligned sequence on the reference.
type Mapping struct {
	Parent Span // reference coordinates
	Block  Span // coordinates in the aligned sequence
	// Reversed is set when the aligned sequence runs against the reference.
	Reversed bool
}

// Block is a gapless stretch of an alignment.
type Block struct {
	Any

	Mapping Mapping
	// DNA of the reference over Mapping.Parent, when loaded.
	DNA []byte
	// Revcomped toggles each time the block is reverse complemented.
	Revcomped bool
}

// NewBlock makes a block for m. An empty name yields the coordinate-derived
// id from BlockID.
func NewBlock(name string, m Mapping) *Block {
	b := &Block{Mapping: m}
	id := SetID(name)
	if id == "" {
		ns := StrandForward
		if m.Reversed {
			ns = StrandReverse
		}
		id = BlockID(m.Parent, StrandForward, m.Block, ns)
		name = string(id)
	}
	b.init(b, LevelBlock, name, id)
	return b
}

func (b *Block) AsAny() *Any {
	if b == nil {
		return nil
	}
	return &b.Any
}

func (b *Block) Alignment() *Alignment {
	al, _ := b.parent.(*Alignment)
	return al
}

func (b *Block) FeatureSet(id ID) *FeatureSet {
	fs, _ := b.Child(id).(*FeatureSet)
	return fs
}

func (b *Block) FeatureSets() []*FeatureSet { return childrenAs[*FeatureSet](&b.Any) }

// HasDNA reports whether reference sequence is attached.
func (b *Block) HasDNA() bool { return len(b.DNA) > 0 }
