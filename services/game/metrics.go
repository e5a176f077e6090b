package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricGamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stickerhunt_games_started_total",
		Help: "Game sessions created.",
	})
	metricGamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stickerhunt_games_finished_total",
		Help: "Game sessions finalized with a score.",
	})
	metricClaims = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stickerhunt_claims_total",
		Help: "Found-sticker claims by outcome.",
	}, []string{"outcome"})
	metricCatalogAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stickerhunt_catalog_stickers_added_total",
		Help: "Stickers added to the catalog by sync runs.",
	})
	metricFinalScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stickerhunt_final_score",
		Help:    "Final score distribution of finished games.",
		Buckets: []float64{0, 100, 200, 400, 700, 1000, 1500, 2000},
	})
)

const (
	claimAccepted  = "accepted"
	claimDuplicate = "duplicate"
)
