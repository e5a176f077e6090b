package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClaimResult is the outcome of registering a found-sticker claim.
// Duplicate is a normal negative result, not an error: the claim landed
// inside the cooldown window of an earlier find for the same pair.
type ClaimResult struct {
	Accepted   bool      `json:"accepted"`
	Duplicate  bool      `json:"duplicate,omitempty"`
	RecordID   uuid.UUID `json:"record_id,omitempty"`
	Found      *Sticker  `json:"found_sticker,omitempty"`
	NextTarget *Sticker  `json:"next_target,omitempty"`
	BonusTime  int       `json:"bonus_time_added,omitempty"`
}

// Registrar persists accepted claims and hands out the next objective.
type Registrar struct {
	store    GameStore
	selector *Selector
	cooldown time.Duration

	now func() time.Time
}

// NewRegistrar builds a registrar with the default cooldown window.
func NewRegistrar(store GameStore, selector *Selector) *Registrar {
	return &Registrar{
		store:    store,
		selector: selector,
		cooldown: ClaimCooldown,
		now:      time.Now,
	}
}

// RegisterClaim validates the claim against the session and the catalog,
// applies cooldown-window de-duplication, and inserts the find record.
//
// The same sticker may legitimately be found more than once per game --
// targets can repeat -- so only claims arriving within the cooldown of the
// most recent find for the same (game, sticker) pair are rejected as
// duplicates. The check is best-effort, not transactionally exclusive;
// near-simultaneous double-taps may both land, which the game tolerates.
func (r *Registrar) RegisterClaim(ctx context.Context, gameID, stickerID uuid.UUID) (ClaimResult, error) {
	g, err := r.store.GetGame(ctx, gameID)
	if err != nil {
		return ClaimResult{}, err
	}
	if g.Finished() {
		return ClaimResult{}, ErrGameFinished
	}

	sticker, err := r.store.GetSticker(ctx, stickerID)
	if err != nil {
		return ClaimResult{}, err
	}

	latest, err := r.store.LatestFind(ctx, gameID, stickerID)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("check duplicates: %w", err)
	}
	if latest != nil && r.now().Sub(latest.CreatedAt) < r.cooldown {
		return ClaimResult{Accepted: false, Duplicate: true}, nil
	}

	record, err := r.store.InsertFind(ctx, gameID, stickerID)
	if err != nil {
		return ClaimResult{}, err
	}

	next, err := r.selector.PickFresh(ctx)
	if err != nil {
		return ClaimResult{}, err
	}

	return ClaimResult{
		Accepted:   true,
		RecordID:   record.ID,
		Found:      &sticker,
		NextTarget: &next,
		BonusTime:  BonusSecondsPerFind,
	}, nil
}
