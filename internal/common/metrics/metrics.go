package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_emails_sent_total",
			Help: "Total number of notification emails accepted by the provider",
		},
		[]string{"kind", "provider"},
	)

	EmailsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_emails_failed_total",
			Help: "Total number of notification emails that failed to send",
		},
		[]string{"kind", "error_category"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notification_dispatch_duration_seconds",
			Help: "Duration of provider dispatch calls in seconds",
		},
		[]string{"provider"},
	)

	TemplateCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_cache_hits_total",
			Help: "Template override cache hits and misses",
		},
		[]string{"result"},
	)

	SettingsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settings_cache_hits_total",
			Help: "Tenant settings cache hits and misses",
		},
		[]string{"result"},
	)
)
