package game

import (
	"time"

	"github.com/google/uuid"
)

// Game configuration shared by the HTTP surface and the session engine.
const (
	// BaseTimeSeconds is the countdown allotment for a new session.
	BaseTimeSeconds = 90
	// BonusSecondsPerFind is added to the countdown for every accepted claim.
	BonusSecondsPerFind = 5
	// MaxElapsedSeconds caps reported play time at finalization. Values
	// beyond it come from clock skew or missed ticks and are clipped.
	MaxElapsedSeconds = 200
	// ClaimCooldown is the window during which a repeated claim on the same
	// (game, sticker) pair counts as a duplicate rather than a new find.
	ClaimCooldown = 2 * time.Second
)

// User is a player identity backed by an external auth provider.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ExternalID string    `json:"external_id" db:"external_id"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	AvatarURL  string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Sticker is a collectible image the player must locate on the board.
// Rows are created by catalog sync and never deleted by this service.
type Sticker struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	URL         string    `json:"url" db:"url"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Game is one timed play-through. ElapsedSeconds and Score are null while
// the session is active and are set together, exactly once, at finalization.
type Game struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	ElapsedSeconds *int      `json:"elapsed_seconds" db:"elapsed_seconds"`
	Score          *int      `json:"score" db:"score"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Finished reports whether the game has been finalized.
func (g Game) Finished() bool { return g.ElapsedSeconds != nil }

// StickerFind records one accepted claim. The same (game, sticker) pair may
// appear more than once when the finds are separated by ClaimCooldown.
type StickerFind struct {
	ID        uuid.UUID `json:"id" db:"id"`
	GameID    uuid.UUID `json:"game_id" db:"game_id"`
	StickerID uuid.UUID `json:"sticker_id" db:"sticker_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FoundSticker joins a find record with the sticker it references.
type FoundSticker struct {
	Find    StickerFind `json:"find"`
	Sticker Sticker     `json:"sticker"`
}

// ScoreboardEntry marks a finished game as published to the leaderboard.
type ScoreboardEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	GameID    uuid.UUID `json:"game_id" db:"game_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RankedGame is a finished game joined with its owner for leaderboard views.
type RankedGame struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	AvatarURL      string    `json:"avatar_url" db:"avatar_url"`
	Score          int       `json:"score" db:"score"`
	ElapsedSeconds int       `json:"elapsed_seconds" db:"elapsed_seconds"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	Published      bool      `json:"published" db:"published"`
}

// GameConfig is returned to clients when a session starts.
type GameConfig struct {
	BaseTimeSeconds     int `json:"base_time_seconds"`
	BonusTimePerSticker int `json:"bonus_time_per_sticker"`
	MaxGameTimeSeconds  int `json:"max_game_time_seconds"`
}

// DefaultGameConfig returns the fixed session parameters.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		BaseTimeSeconds:     BaseTimeSeconds,
		BonusTimePerSticker: BonusSecondsPerFind,
		MaxGameTimeSeconds:  MaxElapsedSeconds,
	}
}
