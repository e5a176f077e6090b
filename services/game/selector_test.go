package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectorPick(t *testing.T) {
	store := newMemStore()
	sel := NewSelector(store)

	t.Run("empty catalog", func(t *testing.T) {
		_, err := sel.Pick(nil)
		require.ErrorIs(t, err, ErrEmptyCatalog)
	})

	t.Run("single item is deterministic", func(t *testing.T) {
		only := store.addSticker("rocket.png")
		got, err := sel.Pick([]Sticker{only})
		require.NoError(t, err)
		require.Equal(t, only.ID, got.ID)
	})

	t.Run("always picks from the catalog", func(t *testing.T) {
		catalog := []Sticker{
			store.addSticker("star.png"),
			store.addSticker("moon.png"),
			store.addSticker("comet.png"),
		}
		ids := make(map[string]bool, len(catalog))
		for _, st := range catalog {
			ids[st.ID.String()] = true
		}
		for i := 0; i < 50; i++ {
			got, err := sel.Pick(catalog)
			require.NoError(t, err)
			require.True(t, ids[got.ID.String()], "picked sticker not in catalog: %s", got.Name)
		}
	})

	t.Run("duplicate names do not bias the draw", func(t *testing.T) {
		a := Sticker{Name: "twin.png"}
		b := Sticker{Name: "twin.png"}
		c := Sticker{Name: "solo.png"}

		// With the duplicate collapsed the draw is over two names; over
		// many draws both must appear.
		seen := make(map[string]bool)
		for i := 0; i < 200; i++ {
			got, err := sel.Pick([]Sticker{a, b, c})
			require.NoError(t, err)
			seen[got.Name] = true
		}
		require.True(t, seen["twin.png"])
		require.True(t, seen["solo.png"])
	})
}

func TestSelectorPickFresh(t *testing.T) {
	store := newMemStore()
	sel := NewSelector(store)

	_, err := sel.PickFresh(context.Background())
	require.ErrorIs(t, err, ErrEmptyCatalog)

	want := store.addSticker("fresh.png")
	got, err := sel.PickFresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
}
