package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hirejacks_applications_submitted_total",
		Help: "Job applications committed successfully.",
	})

	ApplicationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirejacks_applications_rejected_total",
		Help: "Job applications rejected, by reason.",
	}, []string{"reason"})

	CollectionsSeeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirejacks_collections_seeded_total",
		Help: "Seed runs that populated an empty collection.",
	}, []string{"collection"})

	AIGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirejacks_ai_generations_total",
		Help: "Completed AI flow generations, by flow.",
	}, []string{"flow"})
)
