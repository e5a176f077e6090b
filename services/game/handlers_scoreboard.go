package game

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (a *API) handleRanking(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultRankingLimit)
	if err != nil || limit < 1 || limit > maxRankingLimit {
		respondError(w, http.StatusBadRequest, errors.New("limit must be between 1 and 50"))
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		respondError(w, http.StatusBadRequest, errors.New("page must be >= 1"))
		return
	}

	q := RankingQuery{Limit: limit, Page: page}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, errors.New("invalid user_id"))
			return
		}
		q.UserID = userID
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result, err := a.ranking.GlobalRanking(ctx, q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	stats, err := a.ranking.Stats(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (a *API) handleScoreboardGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid game id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	summary, err := a.ranking.GameSummary(ctx, gameID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
