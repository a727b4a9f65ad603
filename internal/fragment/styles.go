// internal/fragment/styles.go
package fragment

import (
	"sync"

	"annotree/internal/feature"
)

// Styles hands out one shared *feature.Style per set name so that feature
// sets decoded from different fragments point at the same style. Loaders
// running on several goroutines may share one Styles.
type Styles struct {
	mu sync.Mutex
	m  map[feature.ID]*feature.Style
}

func NewStyles() *Styles {
	return &Styles{m: make(map[feature.ID]*feature.Style)}
}

// Get returns the style for name, creating it with mode on first use. A
// later call with another mode does not change an existing style.
func (s *Styles) Get(name string, mode feature.Mode) *feature.Style {
	return s.get(name, func() *feature.Style { return feature.NewStyle(name, mode) })
}

// Define registers a style from a document entry. The first definition of
// a name wins; styles are never changed once trees point at them.
func (s *Styles) Define(d StyleDoc) (*feature.Style, error) {
	mode, err := feature.ParseMode(d.Mode)
	if err != nil {
		return nil, err
	}
	return s.get(d.Name, func() *feature.Style {
		st := feature.NewStyle(d.Name, mode)
		st.Colour = d.Colour
		return st
	}), nil
}

func (s *Styles) get(name string, create func() *feature.Style) *feature.Style {
	id := feature.SetID(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.m[id]; ok {
		return st
	}
	st := create()
	s.m[id] = st
	return st
}

// Len is the number of distinct styles.
func (s *Styles) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
