// Package metrics exposes host and workflow activity as Prometheus metrics.
//
// Collectors plug into the engines through their hook structs, so neither the
// host nor the client imports Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aretw0/greenscreen/pkg/domain"
)

const namespace = "greenscreen"

// Collectors holds every metric the tooling records.
type Collectors struct {
	SessionsActive     prometheus.Gauge
	SessionsTotal      prometheus.Counter
	SessionEnds        *prometheus.CounterVec
	SessionDuration    prometheus.Histogram
	ScreensSent        *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	StepAttempts       *prometheus.CounterVec
	StepDuration       *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_sessions_active",
			Help:      "Number of connected terminal sessions",
		}),
		SessionsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_sessions_total",
			Help:      "Total number of terminal sessions started",
		}),
		SessionEnds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_session_ends_total",
			Help:      "Terminal sessions ended, by outcome code",
		}, []string{"code"}),
		SessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "host_session_duration_seconds",
			Help:      "Terminal session duration in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		}),
		ScreensSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_screens_sent_total",
			Help:      "Screens painted, by screen",
		}, []string{"screen"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_transitions_total",
			Help:      "Navigation decisions, by source screen, target and outcome",
		}, []string{"from", "to", "outcome"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_validation_failures_total",
			Help:      "Transitions refused by a validator",
		}, []string{"validation"}),
		StepAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_step_attempts_total",
			Help:      "Workflow step attempts, by kind and outcome code",
		}, []string{"workflow", "kind", "code"}),
		StepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_step_duration_seconds",
			Help:      "Workflow step attempt duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"workflow", "kind"}),
	}
}

// HostHooks returns hooks that feed the host metrics.
func (c *Collectors) HostHooks() domain.HostHooks {
	return domain.HostHooks{
		OnSessionStart: func(context.Context, *domain.SessionEvent) {
			c.SessionsActive.Inc()
			c.SessionsTotal.Inc()
		},
		OnSessionEnd: func(_ context.Context, ev *domain.SessionEvent) {
			c.SessionsActive.Dec()
			c.SessionEnds.WithLabelValues(string(domain.CodeOf(ev.Err))).Inc()
			c.SessionDuration.Observe(ev.Duration.Seconds())
		},
		OnScreenEnter: func(_ context.Context, ev *domain.ScreenEvent) {
			c.ScreensSent.WithLabelValues(ev.ScreenID).Inc()
		},
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			outcome := "moved"
			if !ev.Moved() {
				outcome = "refused"
			}
			c.Transitions.WithLabelValues(ev.From, ev.To, outcome).Inc()
		},
		OnValidationFailed: func(_ context.Context, ev *domain.TransitionEvent) {
			c.ValidationFailures.WithLabelValues(ev.Validation).Inc()
		},
	}
}

// ClientHooks returns hooks that feed the workflow metrics.
func (c *Collectors) ClientHooks() domain.ClientHooks {
	return domain.ClientHooks{
		OnStepFinish: func(_ context.Context, ev *domain.StepEvent) {
			c.StepAttempts.WithLabelValues(ev.Workflow, string(ev.Kind), string(domain.CodeOf(ev.Err))).Inc()
			c.StepDuration.WithLabelValues(ev.Workflow, string(ev.Kind)).Observe(ev.Duration.Seconds())
		},
	}
}
