package game

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	defaultRankingLimit = 10
	maxRankingLimit     = 50
	maxTopGamesLimit    = 100

	// statsFetchLimit bounds how many rows aggregate statistics scan.
	statsFetchLimit = 1000
)

// RankingQuery selects one page of the global ranking. UserID, when set,
// enriches the response with that player's personal standing.
type RankingQuery struct {
	Limit  int
	Page   int
	UserID uuid.UUID
}

func (q RankingQuery) normalized() RankingQuery {
	if q.Limit <= 0 {
		q.Limit = defaultRankingLimit
	}
	if q.Limit > maxRankingLimit {
		q.Limit = maxRankingLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

// RankingEntry is one row of a leaderboard page.
type RankingEntry struct {
	Rank           int       `json:"rank"`
	GameID         uuid.UUID `json:"game_id"`
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Score          int       `json:"score"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	PlayedAt       time.Time `json:"played_at"`
	Published      bool      `json:"published"`
}

// Pagination describes the page an entry list was cut from. TotalItems
// and TotalPages cover the fetched window, not all history.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Count       int  `json:"count"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// UserStanding is a player's personal slice of the global ranking.
type UserStanding struct {
	UserID         uuid.UUID `json:"user_id"`
	BestScore      int       `json:"best_score"`
	GamesPlayed    int       `json:"games_played"`
	GlobalPosition int       `json:"global_position"`
}

// RankingPage is one page of the global ranking plus optional personal
// standing for the requesting player.
type RankingPage struct {
	Entries    []RankingEntry `json:"entries"`
	Pagination Pagination     `json:"pagination"`
	User       *UserStanding  `json:"user,omitempty"`
}

// BoardStats are aggregate statistics over recent finished games.
type BoardStats struct {
	TotalGames    int            `json:"total_games"`
	UniquePlayers int            `json:"unique_players"`
	HighestScore  int            `json:"highest_score"`
	LowestScore   int            `json:"lowest_score"`
	AverageScore  float64        `json:"average_score"`
	TopScores     []RankingEntry `json:"top_scores"`
}

// RankingService serves leaderboard reads. Pages are cut in memory from a
// single ordered fetch sized to cover the requested window, so rank
// numbers stay consistent across pages without a second counting query.
type RankingService struct {
	store GameStore
}

func NewRankingService(store GameStore) *RankingService {
	return &RankingService{store: store}
}

// TopGames returns the best finished games, ranked from 1. The flat list
// allows a wider limit than the paginated ranking.
func (r *RankingService) TopGames(ctx context.Context, limit int) ([]RankingEntry, error) {
	if limit <= 0 {
		limit = defaultRankingLimit
	}
	if limit > maxTopGamesLimit {
		limit = maxTopGamesLimit
	}

	rows, err := r.store.RankedGames(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toEntries(rows, 1), nil
}

// GlobalRanking returns one page of the ranking. The fetch window is one
// row wider than the page end so has_next can be answered without a count
// query; a page past the end comes back empty, not as an error.
func (r *RankingService) GlobalRanking(ctx context.Context, q RankingQuery) (RankingPage, error) {
	q = q.normalized()

	window := q.Limit*q.Page + 1
	rows, err := r.store.RankedGames(ctx, window)
	if err != nil {
		return RankingPage{}, err
	}

	start := q.Limit * (q.Page - 1)
	end := start + q.Limit
	hasNext := len(rows) > end
	if end > len(rows) {
		end = len(rows)
	}

	var pageRows []RankedGame
	if start < len(rows) {
		pageRows = rows[start:end]
	}

	// Totals cover the fetch window, excluding the has_next probe row.
	totalItems := len(rows)
	if totalItems > q.Limit*q.Page {
		totalItems = q.Limit * q.Page
	}
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + q.Limit - 1) / q.Limit
	}

	page := RankingPage{
		Entries: toEntries(pageRows, start+1),
		Pagination: Pagination{
			Page:        q.Page,
			Limit:       q.Limit,
			Count:       len(pageRows),
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			HasNext:     hasNext,
			HasPrevious: q.Page > 1,
		},
	}

	if q.UserID != uuid.Nil {
		if standing := standingFor(rows, q.UserID); standing != nil {
			page.User = standing
		}
	}

	return page, nil
}

// standingFor derives a player's best rank from an ordered ranking slice.
// The position is only as deep as the fetched window; a player outside it
// has no standing on this page.
func standingFor(rows []RankedGame, userID uuid.UUID) *UserStanding {
	s := UserStanding{UserID: userID}
	for i, row := range rows {
		if row.UserID != userID {
			continue
		}
		s.GamesPlayed++
		if s.GlobalPosition == 0 {
			s.GlobalPosition = i + 1
			s.BestScore = row.Score
		}
	}
	if s.GamesPlayed == 0 {
		return nil
	}
	return &s
}

// Stats aggregates recent finished games: totals, score spread, and the
// podium. The scan is bounded, so on very large boards the numbers cover
// the top window rather than all history.
func (r *RankingService) Stats(ctx context.Context) (BoardStats, error) {
	rows, err := r.store.RankedGames(ctx, statsFetchLimit)
	if err != nil {
		return BoardStats{}, err
	}

	stats := BoardStats{TopScores: []RankingEntry{}}
	if len(rows) == 0 {
		return stats, nil
	}

	players := make(map[uuid.UUID]struct{}, len(rows))
	total := 0
	stats.HighestScore = rows[0].Score
	stats.LowestScore = rows[0].Score
	for _, row := range rows {
		players[row.UserID] = struct{}{}
		total += row.Score
		if row.Score > stats.HighestScore {
			stats.HighestScore = row.Score
		}
		if row.Score < stats.LowestScore {
			stats.LowestScore = row.Score
		}
	}

	stats.TotalGames = len(rows)
	stats.UniquePlayers = len(players)
	stats.AverageScore = round2(float64(total) / float64(len(rows)))

	top := rows
	if len(top) > 3 {
		top = top[:3]
	}
	stats.TopScores = toEntries(top, 1)

	return stats, nil
}

// GameSummary is the per-game scoreboard view: the stored outcome plus
// the finds that produced it.
type GameSummary struct {
	Game     Game             `json:"game"`
	Username string           `json:"username"`
	Found    []FoundSticker   `json:"found_stickers"`
	Rating   string           `json:"performance_rating"`
	Entry    *ScoreboardEntry `json:"scoreboard_entry,omitempty"`
}

// GameSummary returns the scoreboard detail for one finished game.
// Unfinished games are not summarizable and report ErrGameNotFound so the
// surface does not leak in-progress sessions.
func (r *RankingService) GameSummary(ctx context.Context, gameID uuid.UUID) (GameSummary, error) {
	g, err := r.store.GetGame(ctx, gameID)
	if err != nil {
		return GameSummary{}, err
	}
	if !g.Finished() {
		return GameSummary{}, ErrGameNotFound
	}

	owner, err := r.store.GetUser(ctx, g.UserID)
	if err != nil {
		return GameSummary{}, err
	}

	found, err := r.store.ListFinds(ctx, gameID)
	if err != nil {
		return GameSummary{}, err
	}

	elapsed := 0
	if g.ElapsedSeconds != nil {
		elapsed = *g.ElapsedSeconds
	}
	// Stickers per minute, matching the rate the tier bands were scored on.
	rate := 0.0
	if elapsed > 0 {
		rate = float64(len(found)) / (float64(elapsed) / 60)
	}
	score := 0
	if g.Score != nil {
		score = *g.Score
	}

	entry, err := r.store.GetPublication(ctx, gameID)
	if err != nil {
		return GameSummary{}, err
	}

	return GameSummary{
		Game:     g,
		Username: owner.Username,
		Found:    found,
		Rating:   performanceRating(rate, score),
		Entry:    entry,
	}, nil
}

func toEntries(rows []RankedGame, firstRank int) []RankingEntry {
	entries := make([]RankingEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, RankingEntry{
			Rank:           firstRank + i,
			GameID:         row.ID,
			UserID:         row.UserID,
			Username:       row.Username,
			AvatarURL:      row.AvatarURL,
			Score:          row.Score,
			ElapsedSeconds: row.ElapsedSeconds,
			PlayedAt:       row.CreatedAt,
			Published:      row.Published,
		})
	}
	return entries
}
