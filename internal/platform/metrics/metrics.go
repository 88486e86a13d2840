package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	AdmissionDecisions *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
	FlagToggles        *prometheus.CounterVec
	SettingsApplies    *prometheus.CounterVec
	AdmissionDuration  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AdmissionDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_admission_decisions_total",
			Help: "Admission decisions by outcome (allowed, rejected_origin, rejected_credential, rejected_feature)",
		}, []string{"outcome"}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_login_attempts_total",
			Help: "Login attempts by result (success, unknown_identity, bad_secret, locked)",
		}, []string{"result"}),
		FlagToggles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_feature_flag_toggles_total",
			Help: "Feature flag writes by flag name",
		}, []string{"flag"}),
		SettingsApplies: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_settings_applies_total",
			Help: "Settings domain applies by domain and result (ok, validation_error, persist_error)",
		}, []string{"domain", "result"}),
		AdmissionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainsync_admission_duration_seconds",
			Help:    "Time spent in the admission pipeline per request",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests do not
// collide on promauto's default registerer.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		AdmissionDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_admission_decisions_total",
			Help: "Admission decisions by outcome",
		}, []string{"outcome"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_login_attempts_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		FlagToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_feature_flag_toggles_total",
			Help: "Feature flag writes by flag name",
		}, []string{"flag"}),
		SettingsApplies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsync_settings_applies_total",
			Help: "Settings domain applies by domain and result",
		}, []string{"domain", "result"}),
		AdmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainsync_admission_duration_seconds",
			Help:    "Time spent in the admission pipeline per request",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
