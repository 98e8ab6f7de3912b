package detector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var detectorAPIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "arbiter_detector_api_duration_sec",
	Help: "Duration of region detection API calls, by detector kind",
}, []string{"kind"})

var detectorAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arbiter_detector_api_count",
	Help: "Number of region detection API calls, by detector kind and HTTP status code",
}, []string{"kind", "status"})
