package game

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions tune the outer middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimit      int
	Ready          func() error
}

// Routes constructs the chi router containing all game endpoints.
func (a *API) Routes(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	rate := opts.RateLimit
	if rate <= 0 {
		rate = 100
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(rate, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(); err != nil {
				respondError(w, http.StatusServiceUnavailable, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/user", a.handleAuthUser)

		r.Post("/game/start", a.handleGameStart)
		r.Get("/game/ranking", a.handleTopGames)
		r.Route("/game/{gameID}", func(r chi.Router) {
			r.Get("/", a.handleGameDetail)
			r.Post("/stickers", a.handleRegisterFind)
			r.Post("/end", a.handleGameEnd)
		})

		r.Route("/scoreboard", func(r chi.Router) {
			r.Get("/ranking", a.handleRanking)
			r.Get("/stats", a.handleStats)
			r.Get("/game/{gameID}", a.handleScoreboardGame)
		})
	})

	return r
}
