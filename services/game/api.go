package game

import (
	"errors"

	"github.com/rs/zerolog"
)

// API wires the game services behind the HTTP surface.
type API struct {
	store     GameStore
	syncer    *CatalogSyncer
	selector  *Selector
	registrar *Registrar
	ranking   *RankingService
	identity  *IdentityService
	publisher *Publisher
	log       zerolog.Logger
}

// APIOptions carries the collaborators an API needs. Publisher may be
// nil-backed; Identity may be nil when the auth surface is disabled.
type APIOptions struct {
	Store     GameStore
	Objects   ObjectStore
	Identity  IdentityProvider
	Publisher *Publisher
	Logger    zerolog.Logger
}

// NewAPI validates the options and assembles the service graph.
func NewAPI(opts APIOptions) (*API, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Objects == nil {
		return nil, errors.New("object store is required")
	}

	selector := NewSelector(opts.Store)
	a := &API{
		store:     opts.Store,
		syncer:    NewCatalogSyncer(opts.Store, opts.Objects),
		selector:  selector,
		registrar: NewRegistrar(opts.Store, selector),
		ranking:   NewRankingService(opts.Store),
		publisher: opts.Publisher,
		log:       opts.Logger,
	}
	if opts.Identity != nil {
		a.identity = NewIdentityService(opts.Identity, opts.Store)
	}
	return a, nil
}
