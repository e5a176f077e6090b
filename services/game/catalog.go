package game

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// catalogListLimit bounds one listing of the sticker bucket.
	catalogListLimit = 1000
	// StickerPrefix is the bucket prefix holding collectible images.
	StickerPrefix = ""
)

// ObjectStore is the object-storage surface consumed by catalog sync.
// pkg/s3.Client satisfies it.
type ObjectStore interface {
	List(ctx context.Context, prefix string, limit, offset int) ([]StoredObject, error)
	PublicURL(name string) string
}

// StoredObject describes one object in the bucket listing.
type StoredObject struct {
	Name string
	Size int64
}

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	TotalStored  int `json:"total_stored"`
	Eligible     int `json:"eligible"`
	AlreadyKnown int `json:"already_known"`
	NewlyAdded   int `json:"newly_added"`
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// CatalogSyncer reconciles the sticker bucket with the stickers table.
// Writes are additive and keyed by object URL, so concurrent or repeated
// runs converge without locking.
type CatalogSyncer struct {
	store   GameStore
	objects ObjectStore
}

// NewCatalogSyncer binds the syncer to its stores.
func NewCatalogSyncer(store GameStore, objects ObjectStore) *CatalogSyncer {
	return &CatalogSyncer{store: store, objects: objects}
}

// Sync lists the bucket, filters to image files, and inserts catalog rows
// for objects not yet represented, attributed to uploaderID. Listing or
// store failures abort the run; rows inserted before a failure are kept
// (the next run converges).
func (c *CatalogSyncer) Sync(ctx context.Context, uploaderID uuid.UUID) (SyncResult, error) {
	objects, err := c.objects.List(ctx, StickerPrefix, catalogListLimit, 0)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list sticker bucket: %w", err)
	}

	var eligible []StoredObject
	for _, obj := range objects {
		if imageExtensions[strings.ToLower(path.Ext(obj.Name))] {
			eligible = append(eligible, obj)
		}
	}

	known, err := c.store.ListStickers(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load known stickers: %w", err)
	}

	knownURLs := make(map[string]bool, len(known))
	for _, st := range known {
		knownURLs[st.URL] = true
	}

	var fresh []Sticker
	for _, obj := range eligible {
		url := c.objects.PublicURL(obj.Name)
		if knownURLs[url] {
			continue
		}
		display := DisplayName(obj.Name)
		fresh = append(fresh, Sticker{
			UserID:      uploaderID,
			Name:        obj.Name,
			URL:         url,
			Description: fmt.Sprintf("Find the %s sticker", strings.ToLower(display)),
		})
	}

	added, err := c.store.InsertStickers(ctx, fresh)
	if err != nil {
		return SyncResult{}, fmt.Errorf("insert stickers: %w", err)
	}
	metricCatalogAdded.Add(float64(added))

	return SyncResult{
		TotalStored:  len(objects),
		Eligible:     len(eligible),
		AlreadyKnown: len(known),
		NewlyAdded:   added,
	}, nil
}

// DisplayName derives a human-friendly name from an object file name:
// extension stripped, separators replaced with spaces, words title-cased.
func DisplayName(fileName string) string {
	name := path.Base(fileName)
	name = strings.TrimSuffix(name, path.Ext(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
