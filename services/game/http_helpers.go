package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondStoreError maps the package sentinels onto HTTP statuses so every
// handler reports the same way.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrStickerNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrGameFinished):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, ErrUserRequired), errors.Is(err, ErrEmptyCatalog):
		respondError(w, http.StatusBadRequest, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// queryInt reads an integer query parameter, returning fallback when the
// parameter is absent.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
