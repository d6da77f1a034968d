package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	RunsStarted        prometheus.Counter
	RunsSucceeded      prometheus.Counter
	RunsFailed         prometheus.Counter
	RunDuration        prometheus.Histogram
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booker_runs_total",
			Help: "The total number of booking workflow runs started.",
		}),
		RunsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booker_runs_succeeded_total",
			Help: "The total number of booking workflow runs that completed successfully.",
		}),
		RunsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booker_runs_failed_total",
			Help: "The total number of booking workflow runs that failed.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "booker_run_duration_seconds",
			Help:    "The duration of individual booking workflow runs.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booker_notifications_sent_total",
			Help: "The total number of outcome notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booker_notifications_failed_total",
			Help: "The total number of outcome notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "booker_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RunsStarted,
		s.RunsSucceeded,
		s.RunsFailed,
		s.RunDuration,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRunsStarted() {
	s.RunsStarted.Inc()
}

func (s *Service) IncRunsSucceeded() {
	s.RunsSucceeded.Inc()
}

func (s *Service) IncRunsFailed() {
	s.RunsFailed.Inc()
}

func (s *Service) ObserveRunDuration(seconds float64) {
	s.RunDuration.Observe(seconds)
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
