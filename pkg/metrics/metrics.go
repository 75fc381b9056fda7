package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "survey_crm"

// Registry holds every collector exposed on /metrics
var Registry = prometheus.NewRegistry()

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code",
	}, []string{"method", "route", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// STTAttempts counts every vendor call made by a key chain. outcome is "success" or "failure".
	STTAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stt",
		Name:      "attempts_total",
		Help:      "Speech-to-text vendor calls by provider and outcome",
	}, []string{"provider", "outcome"})

	UrgentNotifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notify",
		Name:      "urgent_total",
		Help:      "Urgent follow-up notifications by sink and outcome",
	}, []string{"sink", "outcome"})

	FeedbackSaved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feedback",
		Name:      "saved_total",
		Help:      "Feedback upserts by status and whether the record was created",
	}, []string{"status", "created"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		STTAttempts,
		UrgentNotifications,
		FeedbackSaved,
	)
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		ErrorLog:      errorLogger{},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

type errorLogger struct{}

// Println implements promhttp.Logger
func (errorLogger) Println(v ...interface{}) {
	log.Error().Str("component", "metrics").Msg(fmt.Sprint(v...))
}
