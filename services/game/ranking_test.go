package game

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// seedRankedGames creates n finished games with descending scores
// (n*10, n*10-10, ...) and returns the owning users in score order.
func seedRankedGames(t *testing.T, store *memStore, n int) []User {
	t.Helper()
	users := make([]User, 0, n)
	for i := 0; i < n; i++ {
		u := store.addUser(uuid.NewString()[:8])
		g, err := store.CreateGame(context.Background(), u.ID)
		require.NoError(t, err)
		_, err = store.FinishGame(context.Background(), g.ID, 90, (n-i)*10)
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func TestTopGames(t *testing.T) {
	store := newMemStore()
	seedRankedGames(t, store, 5)
	svc := NewRankingService(store)

	entries, err := svc.TopGames(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, 50, entries[0].Score)
	require.Equal(t, 3, entries[2].Rank)
	require.Equal(t, 30, entries[2].Score)
}

func TestTopGamesWideLimit(t *testing.T) {
	store := newMemStore()
	seedRankedGames(t, store, 60)
	svc := NewRankingService(store)

	// The flat list honors limits beyond the paginated ranking's cap.
	entries, err := svc.TopGames(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, entries, 60)

	entries, err = svc.TopGames(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, entries, 60)
}

func TestGlobalRankingPagination(t *testing.T) {
	store := newMemStore()
	seedRankedGames(t, store, 25)
	svc := NewRankingService(store)

	t.Run("first page", func(t *testing.T) {
		page, err := svc.GlobalRanking(context.Background(), RankingQuery{Limit: 10, Page: 1})
		require.NoError(t, err)
		require.Len(t, page.Entries, 10)
		require.Equal(t, 1, page.Entries[0].Rank)
		require.Equal(t, 250, page.Entries[0].Score)
		require.False(t, page.Pagination.HasPrevious)
		require.True(t, page.Pagination.HasNext)
	})

	t.Run("second page continues the rank sequence", func(t *testing.T) {
		page, err := svc.GlobalRanking(context.Background(), RankingQuery{Limit: 10, Page: 2})
		require.NoError(t, err)
		require.Len(t, page.Entries, 10)
		require.Equal(t, 11, page.Entries[0].Rank)
		require.Equal(t, 20, page.Entries[9].Rank)
		require.True(t, page.Pagination.HasPrevious)
		require.True(t, page.Pagination.HasNext)
		require.Equal(t, 20, page.Pagination.TotalItems)
		require.Equal(t, 2, page.Pagination.TotalPages)
	})

	t.Run("last page is short", func(t *testing.T) {
		page, err := svc.GlobalRanking(context.Background(), RankingQuery{Limit: 10, Page: 3})
		require.NoError(t, err)
		require.Len(t, page.Entries, 5)
		require.Equal(t, 21, page.Entries[0].Rank)
		require.False(t, page.Pagination.HasNext)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := svc.GlobalRanking(context.Background(), RankingQuery{Limit: 10, Page: 9})
		require.NoError(t, err)
		require.Empty(t, page.Entries)
		require.False(t, page.Pagination.HasNext)
		require.True(t, page.Pagination.HasPrevious)
	})
}

func TestGlobalRankingUserStanding(t *testing.T) {
	store := newMemStore()
	users := seedRankedGames(t, store, 10)
	svc := NewRankingService(store)

	// Third-best player, a second weaker game for the same player.
	third := users[2]
	g, err := store.CreateGame(context.Background(), third.ID)
	require.NoError(t, err)
	_, err = store.FinishGame(context.Background(), g.ID, 90, 5)
	require.NoError(t, err)

	page, err := svc.GlobalRanking(context.Background(), RankingQuery{Limit: 20, Page: 1, UserID: third.ID})
	require.NoError(t, err)
	require.NotNil(t, page.User)
	require.Equal(t, 3, page.User.GlobalPosition)
	require.Equal(t, 80, page.User.BestScore)
	require.Equal(t, 2, page.User.GamesPlayed)

	// An unknown player yields no standing.
	page, err = svc.GlobalRanking(context.Background(), RankingQuery{Limit: 20, Page: 1, UserID: uuid.New()})
	require.NoError(t, err)
	require.Nil(t, page.User)
}

func TestBoardStats(t *testing.T) {
	store := newMemStore()
	svc := NewRankingService(store)

	t.Run("empty board", func(t *testing.T) {
		stats, err := svc.Stats(context.Background())
		require.NoError(t, err)
		require.Zero(t, stats.TotalGames)
		require.Empty(t, stats.TopScores)
	})

	t.Run("aggregates", func(t *testing.T) {
		users := seedRankedGames(t, store, 4) // scores 40, 30, 20, 10

		// A fourth game for an existing player keeps unique players at 4.
		g, err := store.CreateGame(context.Background(), users[0].ID)
		require.NoError(t, err)
		_, err = store.FinishGame(context.Background(), g.ID, 90, 100)
		require.NoError(t, err)

		stats, err := svc.Stats(context.Background())
		require.NoError(t, err)
		require.Equal(t, 5, stats.TotalGames)
		require.Equal(t, 4, stats.UniquePlayers)
		require.Equal(t, 100, stats.HighestScore)
		require.Equal(t, 10, stats.LowestScore)
		require.Equal(t, 40.0, stats.AverageScore)
		require.Len(t, stats.TopScores, 3)
		require.Equal(t, 100, stats.TopScores[0].Score)
	})
}

func TestGameSummary(t *testing.T) {
	store := newMemStore()
	user := store.addUser("summist")
	sticker := store.addSticker("fox.png")
	svc := NewRankingService(store)

	g, err := store.CreateGame(context.Background(), user.ID)
	require.NoError(t, err)
	_, err = store.InsertFind(context.Background(), g.ID, sticker.ID)
	require.NoError(t, err)

	// In-progress games are not exposed on the scoreboard surface.
	_, err = svc.GameSummary(context.Background(), g.ID)
	require.ErrorIs(t, err, ErrGameNotFound)

	_, err = store.FinishGame(context.Background(), g.ID, 60, 300)
	require.NoError(t, err)

	summary, err := svc.GameSummary(context.Background(), g.ID)
	require.NoError(t, err)
	require.Equal(t, "summist", summary.Username)
	require.Len(t, summary.Found, 1)
	require.NotEmpty(t, summary.Rating)
	require.Nil(t, summary.Entry)

	_, err = store.PublishGame(context.Background(), g.ID, user.ID)
	require.NoError(t, err)

	summary, err = svc.GameSummary(context.Background(), g.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Entry)
}

func TestGameSummaryRatingMatchesFinalization(t *testing.T) {
	store := newMemStore()
	user := store.addUser("pacer")
	sticker := store.addSticker("fox.png")
	svc := NewRankingService(store)

	g, err := store.CreateGame(context.Background(), user.ID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := store.InsertFind(context.Background(), g.ID, sticker.ID)
		require.NoError(t, err)
	}

	// 5 finds in 60 seconds is 5 per minute, an EXPERT-tier pace.
	result, err := FinalizeGame(context.Background(), store, g.ID, FinalStats{TimePlayed: 60, TimeBonus: 10})
	require.NoError(t, err)
	require.Equal(t, PerformanceExpert, result.Performance)

	summary, err := svc.GameSummary(context.Background(), g.ID)
	require.NoError(t, err)
	require.Equal(t, result.Performance, summary.Rating)
}
