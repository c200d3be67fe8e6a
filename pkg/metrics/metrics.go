package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerEvents counts committed ledger entries by kind.
	LedgerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bragboard_ledger_events_total",
		Help: "Committed scoring ledger entries by kind.",
	}, []string{"kind"})

	ReactionMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bragboard_reaction_mutations_total",
		Help: "Reaction store mutations by outcome (added, replaced, removed).",
	}, []string{"outcome"})

	LeaderboardDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bragboard_leaderboard_query_seconds",
		Help:    "Time spent computing a leaderboard.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	FeedDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bragboard_feed_query_seconds",
		Help:    "Time spent answering a feed query.",
		Buckets: prometheus.DefBuckets,
	})
)
