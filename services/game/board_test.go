package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutBoard(t *testing.T) {
	store := newMemStore()
	catalog := []Sticker{
		store.addSticker("a.png"),
		store.addSticker("b.png"),
		store.addSticker("c.png"),
		store.addSticker("d.png"),
	}

	board := LayoutBoard(catalog)
	require.Len(t, board, len(catalog))

	seen := make(map[string]bool, len(board))
	for _, b := range board {
		seen[b.Sticker.ID.String()] = true
		require.GreaterOrEqual(t, b.X, 5.0)
		require.LessOrEqual(t, b.X, 85.0)
		require.GreaterOrEqual(t, b.Y, 5.0)
		require.LessOrEqual(t, b.Y, 85.0)
		require.GreaterOrEqual(t, b.Rotation, 0.0)
		require.Less(t, b.Rotation, 360.0)
		require.GreaterOrEqual(t, b.Scale, 0.4)
		require.LessOrEqual(t, b.Scale, 1.6)
	}
	require.Len(t, seen, len(catalog), "every sticker placed exactly once")
}

func TestLayoutBoardEmpty(t *testing.T) {
	require.Empty(t, LayoutBoard(nil))
}

func TestShuffleBoard(t *testing.T) {
	store := newMemStore()
	catalog := []Sticker{
		store.addSticker("a.png"),
		store.addSticker("b.png"),
		store.addSticker("c.png"),
	}
	board := LayoutBoard(catalog)

	before := make(map[string]Sticker, len(board))
	for _, b := range board {
		before[b.Sticker.ID.String()] = b.Sticker
	}

	ShuffleBoard(board)

	for _, b := range board {
		_, ok := before[b.Sticker.ID.String()]
		require.True(t, ok, "shuffle must not change board membership")
		require.GreaterOrEqual(t, b.X, 5.0)
		require.LessOrEqual(t, b.X, 85.0)
	}
}
