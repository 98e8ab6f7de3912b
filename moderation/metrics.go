package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arbiter_moderation_decision_count",
	Help: "Number of terminal moderation decisions, by modality and outcome",
}, []string{"modality", "decision"})

var pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "arbiter_moderation_pipeline_duration_sec",
	Help: "End-to-end duration of the moderation pipeline, by modality",
}, []string{"modality"})
