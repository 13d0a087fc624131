package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	OnRampTransitionTotal      = "onramp_transition_total"
	PartnerFailureTotal        = "partner_failure_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		OnRampTransitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: OnRampTransitionTotal,
			Help: "Count of all applied on-ramp status transitions",
		}, []string{"status"}),
		PartnerFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PartnerFailureTotal,
			Help: "Count of all failed partner calls",
		}, []string{"partner"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)
