package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stickerhunt/pkg/db"
)

// GameStore is the relational persistence surface consumed by the core.
// PgStore implements it against Postgres; tests substitute an in-memory fake.
type GameStore interface {
	UpsertUser(ctx context.Context, ident Identity) (User, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)

	CreateGame(ctx context.Context, userID uuid.UUID) (Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (Game, error)
	// FinishGame sets elapsed time and score together, exactly once.
	// A second call for the same game fails with ErrGameFinished.
	FinishGame(ctx context.Context, id uuid.UUID, elapsedSeconds, score int) (Game, error)

	ListStickers(ctx context.Context) ([]Sticker, error)
	GetSticker(ctx context.Context, id uuid.UUID) (Sticker, error)
	InsertStickers(ctx context.Context, stickers []Sticker) (int, error)

	LatestFind(ctx context.Context, gameID, stickerID uuid.UUID) (*StickerFind, error)
	InsertFind(ctx context.Context, gameID, stickerID uuid.UUID) (StickerFind, error)
	InsertFinds(ctx context.Context, gameID uuid.UUID, stickerIDs []uuid.UUID) (int, error)
	ListFinds(ctx context.Context, gameID uuid.UUID) ([]FoundSticker, error)
	CountFinds(ctx context.Context, gameID uuid.UUID) (int, error)

	PublishGame(ctx context.Context, gameID, userID uuid.UUID) (ScoreboardEntry, error)
	GetPublication(ctx context.Context, gameID uuid.UUID) (*ScoreboardEntry, error)

	// RankedGames returns finished games sorted by score descending,
	// joined with owner display fields, bounded by limit.
	RankedGames(ctx context.Context, limit int) ([]RankedGame, error)
}

// PgStore implements GameStore on a pgx connection pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps the provided pool.
func NewPgStore(pool *pgxpool.Pool) (*PgStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &PgStore{pool: pool}, nil
}

// UpsertUser inserts or refreshes a user row keyed by the external identity.
// The unique constraint on external_id makes concurrent first-time logins
// converge on a single row instead of racing.
func (s *PgStore) UpsertUser(ctx context.Context, ident Identity) (User, error) {
	query := `
        INSERT INTO users (id, external_id, username, email, avatar_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (external_id) DO UPDATE SET
            username = EXCLUDED.username,
            avatar_url = EXCLUDED.avatar_url
        RETURNING id, external_id, username, email, avatar_url, created_at;
    `

	var u User
	err := db.Get(ctx, s.pool, &u, query, uuid.New(), ident.ID, ident.DisplayName, ident.Email, ident.AvatarURL, time.Now().UTC())
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (s *PgStore) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := db.Get(ctx, s.pool, &u, `
        SELECT id, external_id, username, email, avatar_url, created_at
        FROM users WHERE id = $1`, id)
	if pgxscan.NotFound(err) {
		return User{}, ErrGameNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PgStore) CreateGame(ctx context.Context, userID uuid.UUID) (Game, error) {
	query := `
        INSERT INTO games (id, user_id, elapsed_seconds, score, created_at)
        VALUES ($1, $2, NULL, NULL, $3)
        RETURNING id, user_id, elapsed_seconds, score, created_at;
    `

	var g Game
	err := db.Get(ctx, s.pool, &g, query, uuid.New(), userID, time.Now().UTC())
	if err != nil {
		return Game{}, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

func (s *PgStore) GetGame(ctx context.Context, id uuid.UUID) (Game, error) {
	var g Game
	err := db.Get(ctx, s.pool, &g, `
        SELECT id, user_id, elapsed_seconds, score, created_at
        FROM games WHERE id = $1`, id)
	if pgxscan.NotFound(err) {
		return Game{}, ErrGameNotFound
	}
	if err != nil {
		return Game{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// FinishGame updates the game only while it is still active. The
// elapsed_seconds IS NULL guard makes the finalization write race-free:
// whichever caller lands first wins, the second sees ErrGameFinished.
func (s *PgStore) FinishGame(ctx context.Context, id uuid.UUID, elapsedSeconds, score int) (Game, error) {
	query := `
        UPDATE games
        SET elapsed_seconds = $2, score = $3
        WHERE id = $1 AND elapsed_seconds IS NULL
        RETURNING id, user_id, elapsed_seconds, score, created_at;
    `

	var g Game
	err := db.Get(ctx, s.pool, &g, query, id, elapsedSeconds, score)
	if pgxscan.NotFound(err) {
		// Distinguish a finished game from a missing one.
		if _, getErr := s.GetGame(ctx, id); getErr != nil {
			return Game{}, getErr
		}
		return Game{}, ErrGameFinished
	}
	if err != nil {
		return Game{}, fmt.Errorf("finish game: %w", err)
	}
	return g, nil
}

func (s *PgStore) ListStickers(ctx context.Context) ([]Sticker, error) {
	var stickers []Sticker
	err := db.Select(ctx, s.pool, &stickers, `
        SELECT id, user_id, name, url, description, created_at
        FROM stickers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list stickers: %w", err)
	}
	return stickers, nil
}

func (s *PgStore) GetSticker(ctx context.Context, id uuid.UUID) (Sticker, error) {
	var st Sticker
	err := db.Get(ctx, s.pool, &st, `
        SELECT id, user_id, name, url, description, created_at
        FROM stickers WHERE id = $1`, id)
	if pgxscan.NotFound(err) {
		return Sticker{}, ErrStickerNotFound
	}
	if err != nil {
		return Sticker{}, fmt.Errorf("get sticker: %w", err)
	}
	return st, nil
}

// InsertStickers batch-inserts catalog rows. Rows whose URL already exists
// are skipped, keeping concurrent syncs additive and idempotent.
func (s *PgStore) InsertStickers(ctx context.Context, stickers []Sticker) (int, error) {
	if len(stickers) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, st := range stickers {
		id := st.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(`
            INSERT INTO stickers (id, user_id, name, url, description, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (url) DO NOTHING`,
			id, st.UserID, st.Name, st.URL, st.Description, time.Now().UTC())
	}

	ctx, cancel := context.WithTimeout(ctx, db.DefaultTimeout)
	defer cancel()

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range stickers {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert stickers: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *PgStore) LatestFind(ctx context.Context, gameID, stickerID uuid.UUID) (*StickerFind, error) {
	var f StickerFind
	err := db.Get(ctx, s.pool, &f, `
        SELECT id, game_id, sticker_id, created_at
        FROM sticker_finds
        WHERE game_id = $1 AND sticker_id = $2
        ORDER BY created_at DESC
        LIMIT 1`, gameID, stickerID)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest find: %w", err)
	}
	return &f, nil
}

func (s *PgStore) InsertFind(ctx context.Context, gameID, stickerID uuid.UUID) (StickerFind, error) {
	query := `
        INSERT INTO sticker_finds (id, game_id, sticker_id, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, game_id, sticker_id, created_at;
    `

	var f StickerFind
	err := db.Get(ctx, s.pool, &f, query, uuid.New(), gameID, stickerID, time.Now().UTC())
	if err != nil {
		return StickerFind{}, fmt.Errorf("insert find: %w", err)
	}
	return f, nil
}

// InsertFinds flushes a batch of buffered claims in one round trip. The
// batch is reported as all-or-nothing: the first failure aborts with the
// count inserted so far so callers can surface partial outcomes.
func (s *PgStore) InsertFinds(ctx context.Context, gameID uuid.UUID, stickerIDs []uuid.UUID) (int, error) {
	if len(stickerIDs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, stickerID := range stickerIDs {
		batch.Queue(`
            INSERT INTO sticker_finds (id, game_id, sticker_id, created_at)
            VALUES ($1, $2, $3, $4)`,
			uuid.New(), gameID, stickerID, now)
	}

	ctx, cancel := context.WithTimeout(ctx, db.DefaultTimeout)
	defer cancel()

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range stickerIDs {
		if _, err := results.Exec(); err != nil {
			return inserted, fmt.Errorf("flush finds: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

func (s *PgStore) ListFinds(ctx context.Context, gameID uuid.UUID) ([]FoundSticker, error) {
	type findRow struct {
		ID               uuid.UUID `db:"id"`
		GameID           uuid.UUID `db:"game_id"`
		StickerID        uuid.UUID `db:"sticker_id"`
		CreatedAt        time.Time `db:"created_at"`
		SName            string    `db:"s_name"`
		SUserID          uuid.UUID `db:"s_user_id"`
		SURL             string    `db:"s_url"`
		SDescription     string    `db:"s_description"`
		StickerCreatedAt time.Time `db:"s_created_at"`
	}

	var rows []findRow
	err := db.Select(ctx, s.pool, &rows, `
        SELECT f.id, f.game_id, f.sticker_id, f.created_at,
               s.name AS s_name, s.user_id AS s_user_id, s.url AS s_url,
               s.description AS s_description, s.created_at AS s_created_at
        FROM sticker_finds f
        JOIN stickers s ON s.id = f.sticker_id
        WHERE f.game_id = $1
        ORDER BY f.created_at, f.id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list finds: %w", err)
	}

	found := make([]FoundSticker, 0, len(rows))
	for _, r := range rows {
		found = append(found, FoundSticker{
			Find: StickerFind{ID: r.ID, GameID: r.GameID, StickerID: r.StickerID, CreatedAt: r.CreatedAt},
			Sticker: Sticker{
				ID: r.StickerID, UserID: r.SUserID, Name: r.SName,
				URL: r.SURL, Description: r.SDescription, CreatedAt: r.StickerCreatedAt,
			},
		})
	}
	return found, nil
}

func (s *PgStore) CountFinds(ctx context.Context, gameID uuid.UUID) (int, error) {
	var count int
	err := db.Get(ctx, s.pool, &count, `
        SELECT COUNT(*) FROM sticker_finds WHERE game_id = $1`, gameID)
	if err != nil {
		return 0, fmt.Errorf("count finds: %w", err)
	}
	return count, nil
}

func (s *PgStore) PublishGame(ctx context.Context, gameID, userID uuid.UUID) (ScoreboardEntry, error) {
	query := `
        INSERT INTO scoreboard_entries (id, game_id, user_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (game_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING id, game_id, user_id, created_at;
    `

	var e ScoreboardEntry
	err := db.Get(ctx, s.pool, &e, query, uuid.New(), gameID, userID, time.Now().UTC())
	if err != nil {
		return ScoreboardEntry{}, fmt.Errorf("publish game: %w", err)
	}
	return e, nil
}

func (s *PgStore) GetPublication(ctx context.Context, gameID uuid.UUID) (*ScoreboardEntry, error) {
	var e ScoreboardEntry
	err := db.Get(ctx, s.pool, &e, `
        SELECT id, game_id, user_id, created_at
        FROM scoreboard_entries WHERE game_id = $1`, gameID)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}
	return &e, nil
}

func (s *PgStore) RankedGames(ctx context.Context, limit int) ([]RankedGame, error) {
	var games []RankedGame
	err := db.Select(ctx, s.pool, &games, `
        SELECT g.id, g.user_id, u.username, u.email, u.avatar_url,
               g.score, g.elapsed_seconds, g.created_at,
               (e.id IS NOT NULL) AS published
        FROM games g
        JOIN users u ON u.id = g.user_id
        LEFT JOIN scoreboard_entries e ON e.game_id = g.id
        WHERE g.score IS NOT NULL
        ORDER BY g.score DESC, g.created_at
        LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ranked games: %w", err)
	}
	return games, nil
}
