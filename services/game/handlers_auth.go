package game

import (
	"errors"
	"net/http"
)

func (a *API) handleAuthUser(w http.ResponseWriter, r *http.Request) {
	if a.identity == nil {
		respondError(w, http.StatusNotImplemented, errors.New("authentication is not configured"))
		return
	}

	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := a.identity.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			respondError(w, http.StatusUnauthorized, err)
			return
		}
		a.log.Error().Err(err).Msg("authenticate user")
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
