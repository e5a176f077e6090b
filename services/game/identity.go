package game

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Identity is what the external auth service knows about a player.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// IdentityProvider resolves a bearer token to the identity it belongs to.
// Implementations return ErrUnauthenticated for tokens the auth service
// rejects.
type IdentityProvider interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// HTTPIdentityProvider resolves tokens against an external auth service
// over HTTP.
type HTTPIdentityProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPIdentityProvider(endpoint string) *HTTPIdentityProvider {
	return &HTTPIdentityProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPIdentityProvider) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Identity{}, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return Identity{}, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var payload struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Metadata struct {
			Username  string `json:"username"`
			FullName  string `json:"full_name"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user_metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if payload.ID == "" {
		return Identity{}, ErrUnauthenticated
	}

	name := payload.Metadata.Username
	if name == "" {
		name = payload.Metadata.FullName
	}
	if name == "" {
		name = payload.Email
	}

	return Identity{
		ID:          payload.ID,
		Email:       payload.Email,
		DisplayName: name,
		AvatarURL:   payload.Metadata.AvatarURL,
	}, nil
}

// IdentityService turns resolved identities into local user rows. The
// upsert keys on the external id, so repeated sign-ins converge on one
// row while refreshing the mutable profile fields.
type IdentityService struct {
	provider IdentityProvider
	store    GameStore
}

func NewIdentityService(provider IdentityProvider, store GameStore) *IdentityService {
	return &IdentityService{provider: provider, store: store}
}

// Authenticate resolves the token and materializes the local user.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (User, error) {
	ident, err := s.provider.Resolve(ctx, token)
	if err != nil {
		return User{}, err
	}
	return s.store.UpsertUser(ctx, ident)
}
