package game

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory GameStore used across the package tests. It
// mirrors the relational semantics the queries rely on: upsert keyed by
// external id, URL-deduplicated sticker inserts, and the finish-once guard.
type memStore struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[uuid.UUID]User
	games    map[uuid.UUID]Game
	stickers []Sticker
	finds    []StickerFind
	entries  map[uuid.UUID]ScoreboardEntry
}

func newMemStore() *memStore {
	return &memStore{
		now:     func() time.Time { return time.Now().UTC() },
		users:   make(map[uuid.UUID]User),
		games:   make(map[uuid.UUID]Game),
		entries: make(map[uuid.UUID]ScoreboardEntry),
	}
}

func (m *memStore) addUser(username string) User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := User{
		ID:         uuid.New(),
		ExternalID: uuid.NewString(),
		Username:   username,
		Email:      username + "@example.com",
		CreatedAt:  m.now(),
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addSticker(name string) Sticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Sticker{
		ID:        uuid.New(),
		Name:      name,
		URL:       "https://cdn.example.com/stickers/" + name,
		CreatedAt: m.now(),
	}
	m.stickers = append(m.stickers, st)
	return st
}

func (m *memStore) UpsertUser(_ context.Context, ident Identity) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.ExternalID == ident.ID {
			u.Username = ident.DisplayName
			u.AvatarURL = ident.AvatarURL
			m.users[id] = u
			return u, nil
		}
	}
	u := User{
		ID:         uuid.New(),
		ExternalID: ident.ID,
		Username:   ident.DisplayName,
		Email:      ident.Email,
		AvatarURL:  ident.AvatarURL,
		CreatedAt:  m.now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrGameNotFound
	}
	return u, nil
}

func (m *memStore) CreateGame(_ context.Context, userID uuid.UUID) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := Game{ID: uuid.New(), UserID: userID, CreatedAt: m.now()}
	m.games[g.ID] = g
	return g, nil
}

func (m *memStore) GetGame(_ context.Context, id uuid.UUID) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return Game{}, ErrGameNotFound
	}
	return g, nil
}

func (m *memStore) FinishGame(_ context.Context, id uuid.UUID, elapsedSeconds, score int) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return Game{}, ErrGameNotFound
	}
	if g.ElapsedSeconds != nil {
		return Game{}, ErrGameFinished
	}
	g.ElapsedSeconds = &elapsedSeconds
	g.Score = &score
	m.games[id] = g
	return g, nil
}

func (m *memStore) ListStickers(_ context.Context) ([]Sticker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sticker, len(m.stickers))
	copy(out, m.stickers)
	return out, nil
}

func (m *memStore) GetSticker(_ context.Context, id uuid.UUID) (Sticker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.stickers {
		if st.ID == id {
			return st, nil
		}
	}
	return Sticker{}, ErrStickerNotFound
}

func (m *memStore) InsertStickers(_ context.Context, stickers []Sticker) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	known := make(map[string]bool, len(m.stickers))
	for _, st := range m.stickers {
		known[st.URL] = true
	}
	inserted := 0
	for _, st := range stickers {
		if known[st.URL] {
			continue
		}
		if st.ID == uuid.Nil {
			st.ID = uuid.New()
		}
		st.CreatedAt = m.now()
		m.stickers = append(m.stickers, st)
		known[st.URL] = true
		inserted++
	}
	return inserted, nil
}

func (m *memStore) LatestFind(_ context.Context, gameID, stickerID uuid.UUID) (*StickerFind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *StickerFind
	for i := range m.finds {
		f := m.finds[i]
		if f.GameID != gameID || f.StickerID != stickerID {
			continue
		}
		if latest == nil || f.CreatedAt.After(latest.CreatedAt) {
			latest = &m.finds[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (m *memStore) InsertFind(_ context.Context, gameID, stickerID uuid.UUID) (StickerFind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := StickerFind{ID: uuid.New(), GameID: gameID, StickerID: stickerID, CreatedAt: m.now()}
	m.finds = append(m.finds, f)
	return f, nil
}

func (m *memStore) InsertFinds(ctx context.Context, gameID uuid.UUID, stickerIDs []uuid.UUID) (int, error) {
	for _, stickerID := range stickerIDs {
		if _, err := m.InsertFind(ctx, gameID, stickerID); err != nil {
			return 0, err
		}
	}
	return len(stickerIDs), nil
}

func (m *memStore) ListFinds(_ context.Context, gameID uuid.UUID) ([]FoundSticker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []FoundSticker
	for _, f := range m.finds {
		if f.GameID != gameID {
			continue
		}
		var st Sticker
		for _, s := range m.stickers {
			if s.ID == f.StickerID {
				st = s
				break
			}
		}
		out = append(out, FoundSticker{Find: f, Sticker: st})
	}
	return out, nil
}

func (m *memStore) CountFinds(_ context.Context, gameID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, f := range m.finds {
		if f.GameID == gameID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) PublishGame(_ context.Context, gameID, userID uuid.UUID) (ScoreboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[gameID]; ok {
		e.UserID = userID
		m.entries[gameID] = e
		return e, nil
	}
	e := ScoreboardEntry{ID: uuid.New(), GameID: gameID, UserID: userID, CreatedAt: m.now()}
	m.entries[gameID] = e
	return e, nil
}

func (m *memStore) GetPublication(_ context.Context, gameID uuid.UUID) (*ScoreboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[gameID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memStore) RankedGames(_ context.Context, limit int) ([]RankedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ranked []RankedGame
	for _, g := range m.games {
		if g.Score == nil {
			continue
		}
		u := m.users[g.UserID]
		elapsed := 0
		if g.ElapsedSeconds != nil {
			elapsed = *g.ElapsedSeconds
		}
		_, published := m.entries[g.ID]
		ranked = append(ranked, RankedGame{
			ID:             g.ID,
			UserID:         g.UserID,
			Username:       u.Username,
			Email:          u.Email,
			AvatarURL:      u.AvatarURL,
			Score:          *g.Score,
			ElapsedSeconds: elapsed,
			CreatedAt:      g.CreatedAt,
			Published:      published,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
