package game

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (a *API) handleGameStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, ErrUserRequired)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if _, err := a.syncer.Sync(ctx, req.UserID); err != nil {
		a.log.Error().Err(err).Msg("catalog sync")
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	g, err := a.store.CreateGame(ctx, req.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	catalog, err := a.store.ListStickers(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	target, err := a.selector.Pick(catalog)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	metricGamesStarted.Inc()
	a.publisher.GameStarted(r.Context(), g)

	respondJSON(w, http.StatusCreated, map[string]any{
		"game_id":        g.ID,
		"target":         target,
		"total_stickers": len(catalog),
		"config":         DefaultGameConfig(),
		"stickers":       LayoutBoard(catalog),
	})
}

func (a *API) handleRegisterFind(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid game id"))
		return
	}

	var req struct {
		StickerID uuid.UUID `json:"sticker_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.StickerID == uuid.Nil {
		respondError(w, http.StatusBadRequest, errors.New("sticker_id is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result, err := a.registrar.RegisterClaim(ctx, gameID, req.StickerID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if result.Duplicate {
		metricClaims.WithLabelValues(claimDuplicate).Inc()
		respondJSON(w, http.StatusConflict, result)
		return
	}

	metricClaims.WithLabelValues(claimAccepted).Inc()
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleGameEnd(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid game id"))
		return
	}

	var req struct {
		TimePlayed int `json:"time_played"`
		TimeBonus  int `json:"time_bonus"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result, err := FinalizeGame(ctx, a.store, gameID, FinalStats{
		TimePlayed: req.TimePlayed,
		TimeBonus:  req.TimeBonus,
	})
	if err != nil {
		if errors.Is(err, errInvalidStats) {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		respondStoreError(w, err)
		return
	}

	metricGamesFinished.Inc()
	metricFinalScores.Observe(float64(result.FinalScore))

	if g, getErr := a.store.GetGame(ctx, gameID); getErr == nil {
		a.publisher.GameFinished(r.Context(), g.UserID, result)
	}
	if result.Published {
		if entry, pubErr := a.store.GetPublication(ctx, gameID); pubErr == nil && entry != nil {
			a.publisher.ScorePublished(r.Context(), *entry)
		}
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleGameDetail(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid game id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	g, err := a.store.GetGame(ctx, gameID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	found, err := a.store.ListFinds(ctx, gameID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	entry, err := a.store.GetPublication(ctx, gameID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"game":           g,
		"found_stickers": found,
		"scoreboard":     entry,
	})
}

func (a *API) handleTopGames(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultRankingLimit)
	if err != nil || limit < 1 || limit > maxTopGamesLimit {
		respondError(w, http.StatusBadRequest, errors.New("limit must be between 1 and 100"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	entries, err := a.ranking.TopGames(ctx, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"ranking": entries, "count": len(entries)})
}
