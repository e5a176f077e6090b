package game

import (
	"context"
	"math/rand/v2"
)

// Selector picks the player's next objective from the sticker catalog.
//
// Candidates are de-duplicated by sticker name before the draw so that
// accidental duplicate rows do not bias selection. The previous target is
// not excluded: immediate repeats are allowed.
type Selector struct {
	store GameStore
}

// NewSelector binds the selector to the catalog store for fresh picks.
func NewSelector(store GameStore) *Selector {
	return &Selector{store: store}
}

// Pick chooses a target uniformly at random over the name-deduplicated
// view of catalog. Returns ErrEmptyCatalog when there is nothing to pick.
func (s *Selector) Pick(catalog []Sticker) (Sticker, error) {
	if len(catalog) == 0 {
		return Sticker{}, ErrEmptyCatalog
	}

	seen := make(map[string]bool, len(catalog))
	unique := make([]Sticker, 0, len(catalog))
	for _, st := range catalog {
		if seen[st.Name] {
			continue
		}
		seen[st.Name] = true
		unique = append(unique, st)
	}

	return unique[rand.IntN(len(unique))], nil
}

// PickFresh reloads the full catalog and picks from it.
func (s *Selector) PickFresh(ctx context.Context) (Sticker, error) {
	catalog, err := s.store.ListStickers(ctx)
	if err != nil {
		return Sticker{}, err
	}
	return s.Pick(catalog)
}
