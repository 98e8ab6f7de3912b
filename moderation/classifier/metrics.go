package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var inferenceAPIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "arbiter_inference_api_duration_sec",
	Help: "Duration of hosted-inference classification API calls, by model",
}, []string{"model"})

var inferenceAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arbiter_inference_api_count",
	Help: "Number of hosted-inference classification API calls, by model and HTTP status code",
}, []string{"model", "status"})
