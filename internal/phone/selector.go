package phone

import (
	"fmt"

	"go.uber.org/zap"
)

// Selector tracks which catalog entry is current.
type Selector struct {
	catalog *Catalog
	current int
	log     *zap.Logger
}

// NewSelector returns a selector with nothing selected.
func NewSelector(catalog *Catalog, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{catalog: catalog, current: -1, log: log}
}

// Catalog returns the catalog being selected from.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// Select makes the entry with id current.
func (s *Selector) Select(id string) (Entry, error) {
	i := s.catalog.Index(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return s.SelectIndex(i)
}

// SelectIndex makes the i-th entry current (zero based).
func (s *Selector) SelectIndex(i int) (Entry, error) {
	if i < 0 || i >= s.catalog.Len() {
		return Entry{}, fmt.Errorf("%w: index %d", ErrUnknownModel, i)
	}
	s.current = i
	e := s.catalog.Models[i]
	s.log.Debug("model selected", zap.String("id", e.ID), zap.String("path", e.Path))
	return e, nil
}

// Next selects the entry after the current one, wrapping around.
func (s *Selector) Next() (Entry, error) {
	if s.catalog.Len() == 0 {
		return Entry{}, ErrEmptyCatalog
	}
	return s.SelectIndex((s.current + 1) % s.catalog.Len())
}

// Current returns the current entry.
func (s *Selector) Current() (Entry, bool) {
	if s.current < 0 {
		return Entry{}, false
	}
	return s.catalog.Models[s.current], true
}
