package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a session lifecycle phase.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// EngineConfig tunes one session engine. Zero values fall back to the
// production defaults; tests shrink TickInterval to run the countdown fast.
type EngineConfig struct {
	BaseTime     int
	BonusPerFind int
	MaxElapsed   int
	TickInterval time.Duration
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.BaseTime <= 0 {
		c.BaseTime = BaseTimeSeconds
	}
	if c.BonusPerFind <= 0 {
		c.BonusPerFind = BonusSecondsPerFind
	}
	if c.MaxElapsed <= 0 {
		c.MaxElapsed = MaxElapsedSeconds
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// FinalStats are the raw numbers a finalization is computed from.
type FinalStats struct {
	TimePlayed int `json:"time_played"`
	TimeBonus  int `json:"time_bonus"`
}

// FinalResult is the outcome of finalizing a game.
type FinalResult struct {
	GameID        uuid.UUID      `json:"game_id"`
	FinalScore    int            `json:"final_score"`
	StickersFound int            `json:"stickers_found"`
	TimePlayed    int            `json:"time_played"`
	Breakdown     ScoreBreakdown `json:"score_breakdown"`
	Performance   string         `json:"performance"`
	Stats         GameStats      `json:"game_stats"`
	ScoreboardID  *uuid.UUID     `json:"scoreboard_id,omitempty"`
	Published     bool           `json:"published"`
}

// ClaimOutcome is what the engine reports for one tap during play.
type ClaimOutcome struct {
	Match      bool
	NextTarget Sticker
	Remaining  int
}

// Engine drives one play-through: the lifecycle state machine, the
// countdown, bonus-time accrual, and the claim buffer that is flushed in
// one batch at finalization. All state is engine-scoped, so concurrent
// sessions never interfere.
//
// Claims are buffered locally during play rather than persisted one by
// one; a transient store failure mid-play therefore cannot lose progress.
// The trade-off is that an abandoned session leaves no find records and
// stays active in the store.
type Engine struct {
	cfg      EngineConfig
	store    GameStore
	syncer   *CatalogSyncer
	selector *Selector
	onExpire func(FinalResult, error)

	mu           sync.Mutex
	state        State
	lastErr      error
	game         Game
	userID       uuid.UUID
	catalog      []Sticker
	board        []BoardSticker
	target       Sticker
	remaining    int
	bonus        int
	startedAt    time.Time
	claims       []uuid.UUID
	initializing bool
	finalizing   bool
	stopTick     chan struct{}
}

// NewEngine builds an idle engine. onExpire, if non-nil, is invoked with
// the finalization outcome when the countdown reaches zero.
func NewEngine(store GameStore, syncer *CatalogSyncer, selector *Selector, cfg EngineConfig, onExpire func(FinalResult, error)) *Engine {
	return &Engine{
		cfg:      cfg.withDefaults(),
		store:    store,
		syncer:   syncer,
		selector: selector,
		onExpire: onExpire,
		state:    StateIdle,
	}
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the error that sent the engine back to idle, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Snapshot returns the current game, target, and board for rendering.
func (e *Engine) Snapshot() (Game, Sticker, []BoardSticker, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	board := make([]BoardSticker, len(e.board))
	copy(board, e.board)
	return e.game, e.target, board, e.remaining
}

// Initialize moves idle -> loading -> ready: runs catalog sync, creates
// the game row, loads the catalog, lays out the board, and picks the first
// target. A second call while one is outstanding is a no-op. On failure
// the engine returns to idle with the error surfaced via Err.
func (e *Engine) Initialize(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUserRequired
	}

	e.mu.Lock()
	if e.initializing {
		e.mu.Unlock()
		return nil
	}
	if e.state != StateIdle {
		e.mu.Unlock()
		return fmt.Errorf("cannot initialize from state %q", e.state)
	}
	e.initializing = true
	e.state = StateLoading
	e.lastErr = nil
	e.mu.Unlock()

	game, target, catalog, err := e.load(ctx, userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.initializing = false
	if err != nil {
		e.state = StateIdle
		e.lastErr = err
		return err
	}

	e.userID = userID
	e.game = game
	e.catalog = catalog
	e.board = LayoutBoard(catalog)
	e.target = target
	e.remaining = e.cfg.BaseTime
	e.bonus = 0
	e.claims = nil
	e.state = StateReady
	return nil
}

func (e *Engine) load(ctx context.Context, userID uuid.UUID) (Game, Sticker, []Sticker, error) {
	if _, err := e.syncer.Sync(ctx, userID); err != nil {
		return Game{}, Sticker{}, nil, err
	}

	game, err := e.store.CreateGame(ctx, userID)
	if err != nil {
		return Game{}, Sticker{}, nil, err
	}

	catalog, err := e.store.ListStickers(ctx)
	if err != nil {
		return Game{}, Sticker{}, nil, err
	}

	target, err := e.selector.Pick(catalog)
	if err != nil {
		return Game{}, Sticker{}, nil, err
	}

	return game, target, catalog, nil
}

// Start moves ready -> playing and begins the countdown. It is an
// explicit action, never triggered by initialization finishing.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return fmt.Errorf("cannot start from state %q", e.state)
	}

	e.state = StatePlaying
	e.startedAt = time.Now()
	e.remaining = e.cfg.BaseTime
	e.bonus = 0
	e.claims = nil
	e.stopTick = make(chan struct{})
	go e.countdown(e.stopTick)
	return nil
}

// countdown decrements the remaining time once per tick. Expiry stops the
// loop first and finalizes from outside the tick path so the timer is
// never mutated re-entrantly.
func (e *Engine) countdown(stop chan struct{}) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.state != StatePlaying {
				e.mu.Unlock()
				return
			}
			e.remaining--
			expired := e.remaining <= 0
			e.mu.Unlock()

			if expired {
				result, err := e.End(context.Background())
				if e.onExpire != nil {
					e.onExpire(result, err)
				}
				return
			}
		}
	}
}

// Claim handles one tap on a board sticker. A tap on anything but the
// current target is a wrong pick: a negative, transient signal for the
// player, never an error. A matching tap is buffered, earns bonus time,
// picks the next target, and reshuffles the board.
func (e *Engine) Claim(stickerID uuid.UUID) (ClaimOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePlaying {
		return ClaimOutcome{}, fmt.Errorf("cannot claim from state %q", e.state)
	}

	if stickerID != e.target.ID {
		return ClaimOutcome{Match: false, Remaining: e.remaining}, nil
	}

	e.claims = append(e.claims, stickerID)
	e.bonus += e.cfg.BonusPerFind
	e.remaining += e.cfg.BonusPerFind

	next, err := e.selector.Pick(e.catalog)
	if err != nil {
		return ClaimOutcome{}, err
	}
	e.target = next
	ShuffleBoard(e.board)

	return ClaimOutcome{Match: true, NextTarget: next, Remaining: e.remaining}, nil
}

// Shuffle re-randomizes board placement on demand. Not a state
// transition: targets, scores, and timers are unaffected.
func (e *Engine) Shuffle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return
	}
	ShuffleBoard(e.board)
}

// End finalizes the session: stops the countdown, flushes the buffered
// claims in one batch, computes the score, and persists elapsed time and
// score exactly once. The finished transition happens only after the store
// writes succeed, so a failed End may be retried. The finalizing guard
// serializes a countdown-expiry race against an explicit end action; the
// loser returns ErrGameFinished.
func (e *Engine) End(ctx context.Context) (FinalResult, error) {
	e.mu.Lock()
	if e.finalizing || e.state == StateFinished {
		e.mu.Unlock()
		return FinalResult{}, ErrGameFinished
	}
	if e.state != StatePlaying && e.state != StateReady {
		e.mu.Unlock()
		return FinalResult{}, fmt.Errorf("cannot end from state %q", e.state)
	}
	e.finalizing = true
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}

	elapsed := 0
	if !e.startedAt.IsZero() {
		elapsed = int(time.Since(e.startedAt) / time.Second)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > e.cfg.MaxElapsed {
		elapsed = e.cfg.MaxElapsed
	}

	gameID := e.game.ID
	bonus := e.bonus
	claims := e.claims
	e.claims = nil
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.finalizing = false
		e.mu.Unlock()
	}()

	// A failed flush restores the buffer and leaves the session endable,
	// so a transient store outage never loses buffered finds.
	if _, err := e.store.InsertFinds(ctx, gameID, claims); err != nil {
		e.mu.Lock()
		e.claims = append(claims, e.claims...)
		e.mu.Unlock()
		return FinalResult{}, fmt.Errorf("flush claims: %w", err)
	}

	result, err := FinalizeGame(ctx, e.store, gameID, FinalStats{TimePlayed: elapsed, TimeBonus: bonus})
	if err != nil {
		return FinalResult{}, err
	}

	e.mu.Lock()
	e.state = StateFinished
	e.mu.Unlock()
	return result, nil
}

// Close tears down the countdown without finalizing, for when the hosting
// context goes away mid-session. The game row stays active in the store.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}
	if e.state == StatePlaying {
		e.state = StateFinished
	}
}

// FinalizeGame computes and persists the final score for a game. The
// store-level guard makes the write exactly-once: a second finalization
// fails with ErrGameFinished and leaves the stored values untouched.
// Publication to the scoreboard is best-effort and never fails the result.
func FinalizeGame(ctx context.Context, store GameStore, gameID uuid.UUID, stats FinalStats) (FinalResult, error) {
	if stats.TimePlayed < 0 || stats.TimeBonus < 0 {
		return FinalResult{}, fmt.Errorf("%w: negative time", errInvalidStats)
	}
	if stats.TimePlayed > MaxElapsedSeconds {
		stats.TimePlayed = MaxElapsedSeconds
	}

	g, err := store.GetGame(ctx, gameID)
	if err != nil {
		return FinalResult{}, err
	}
	if g.Finished() {
		return FinalResult{}, ErrGameFinished
	}

	found, err := store.CountFinds(ctx, gameID)
	if err != nil {
		return FinalResult{}, err
	}

	input := ScoreInput{
		StickersFound: found,
		TimePlayed:    stats.TimePlayed,
		TimeBonus:     stats.TimeBonus,
		BaseTime:      BaseTimeSeconds,
	}
	score := CalculateScore(input)

	if _, err := store.FinishGame(ctx, gameID, stats.TimePlayed, score.FinalScore); err != nil {
		return FinalResult{}, err
	}

	result := FinalResult{
		GameID:        gameID,
		FinalScore:    score.FinalScore,
		StickersFound: found,
		TimePlayed:    stats.TimePlayed,
		Breakdown:     score.Breakdown,
		Performance:   score.Performance,
		Stats:         CalculateGameStats(input),
	}

	if entry, pubErr := store.PublishGame(ctx, gameID, g.UserID); pubErr == nil {
		id := entry.ID
		result.ScoreboardID = &id
		result.Published = true
	}

	return result, nil
}

// errInvalidStats reports malformed finalization statistics.
var errInvalidStats = errors.New("invalid game statistics")
