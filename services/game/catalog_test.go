package game

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	objects []StoredObject
	baseURL string
}

func (m *memObjects) List(_ context.Context, _ string, _, _ int) ([]StoredObject, error) {
	return m.objects, nil
}

func (m *memObjects) PublicURL(name string) string {
	return m.baseURL + "/" + name
}

func TestCatalogSync(t *testing.T) {
	store := newMemStore()
	objects := &memObjects{
		baseURL: "https://cdn.example.com/bucket",
		objects: []StoredObject{
			{Name: "stickers/red-panda.png", Size: 1024},
			{Name: "stickers/blue_whale.jpg", Size: 2048},
			{Name: "stickers/readme.txt", Size: 12},
			{Name: "stickers/archive.zip", Size: 9000},
		},
	}
	syncer := NewCatalogSyncer(store, objects)
	uploader := uuid.New()

	result, err := syncer.Sync(context.Background(), uploader)
	require.NoError(t, err)
	require.Equal(t, 4, result.TotalStored)
	require.Equal(t, 2, result.Eligible)
	require.Equal(t, 0, result.AlreadyKnown)
	require.Equal(t, 2, result.NewlyAdded)

	stickers, err := store.ListStickers(context.Background())
	require.NoError(t, err)
	require.Len(t, stickers, 2)
	for _, st := range stickers {
		require.Equal(t, uploader, st.UserID)
		require.Contains(t, st.URL, objects.baseURL)
		require.NotEmpty(t, st.Description)
	}
}

func TestCatalogSyncIdempotent(t *testing.T) {
	store := newMemStore()
	objects := &memObjects{
		baseURL: "https://cdn.example.com/bucket",
		objects: []StoredObject{
			{Name: "stickers/comet.png"},
			{Name: "stickers/star.png"},
		},
	}
	syncer := NewCatalogSyncer(store, objects)

	first, err := syncer.Sync(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, 2, first.NewlyAdded)

	second, err := syncer.Sync(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, 0, second.NewlyAdded)
	require.Equal(t, 2, second.AlreadyKnown)

	stickers, err := store.ListStickers(context.Background())
	require.NoError(t, err)
	require.Len(t, stickers, 2)
}

func TestCatalogSyncNewObjectOnly(t *testing.T) {
	store := newMemStore()
	objects := &memObjects{
		baseURL: "https://cdn.example.com/bucket",
		objects: []StoredObject{{Name: "stickers/first.png"}},
	}
	syncer := NewCatalogSyncer(store, objects)

	_, err := syncer.Sync(context.Background(), uuid.New())
	require.NoError(t, err)

	objects.objects = append(objects.objects, StoredObject{Name: "stickers/second.webp"})

	result, err := syncer.Sync(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, 1, result.NewlyAdded)
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"red-panda.png", "Red Panda"},
		{"stickers/blue_whale.jpg", "Blue Whale"},
		{"comet.svg", "Comet"},
		{"double--dash.png", "Double Dash"},
		{"émeraude-verte.png", "Émeraude Verte"},
	}

	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Fatalf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
