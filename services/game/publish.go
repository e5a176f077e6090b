package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stickerhunt/pkg/bus"
)

// Event subjects. Consumers create durable subscriptions on these.
const (
	SubjectGameStarted  = "stickerhunt.games.started"
	SubjectGameFinished = "stickerhunt.games.finished"
	SubjectPublished    = "stickerhunt.scoreboard.published"
)

// GameStartedEvent announces a newly created session.
type GameStartedEvent struct {
	GameID    uuid.UUID `json:"game_id"`
	UserID    uuid.UUID `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
}

// GameFinishedEvent announces a finalized session with its outcome.
type GameFinishedEvent struct {
	GameID         uuid.UUID `json:"game_id"`
	UserID         uuid.UUID `json:"user_id"`
	FinalScore     int       `json:"final_score"`
	StickersFound  int       `json:"stickers_found"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Performance    string    `json:"performance"`
	FinishedAt     time.Time `json:"finished_at"`
}

// ScorePublishedEvent announces a game reaching the public scoreboard.
type ScorePublishedEvent struct {
	EntryID     uuid.UUID `json:"entry_id"`
	GameID      uuid.UUID `json:"game_id"`
	UserID      uuid.UUID `json:"user_id"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher emits game lifecycle events. A nil-bus Publisher is a valid
// no-op, so callers never need to branch on whether eventing is enabled.
// Publish failures are logged and swallowed; eventing is best-effort and
// must never fail a game operation.
type Publisher struct {
	bus *bus.Bus
	log zerolog.Logger
}

func NewPublisher(b *bus.Bus, log zerolog.Logger) *Publisher {
	return &Publisher{bus: b, log: log}
}

func (p *Publisher) GameStarted(ctx context.Context, g Game) {
	p.emit(ctx, SubjectGameStarted, GameStartedEvent{
		GameID:    g.ID,
		UserID:    g.UserID,
		StartedAt: g.CreatedAt,
	})
}

func (p *Publisher) GameFinished(ctx context.Context, userID uuid.UUID, res FinalResult) {
	p.emit(ctx, SubjectGameFinished, GameFinishedEvent{
		GameID:         res.GameID,
		UserID:         userID,
		FinalScore:     res.FinalScore,
		StickersFound:  res.StickersFound,
		ElapsedSeconds: res.TimePlayed,
		Performance:    res.Performance,
		FinishedAt:     time.Now().UTC(),
	})
}

func (p *Publisher) ScorePublished(ctx context.Context, entry ScoreboardEntry) {
	p.emit(ctx, SubjectPublished, ScorePublishedEvent{
		EntryID:     entry.ID,
		GameID:      entry.GameID,
		UserID:      entry.UserID,
		PublishedAt: entry.CreatedAt,
	})
}

func (p *Publisher) emit(ctx context.Context, subj string, v any) {
	if p == nil || p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, subj, v); err != nil {
		p.log.Warn().Err(err).Str("subject", subj).Msg("event publish failed")
	}
}
