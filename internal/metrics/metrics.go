// Package metrics exposes prometheus instrumentation for the HTTP surface
// and the core operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration observes HTTP request latency per route and status.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staybook_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// SignUpTotal counts signup attempts by outcome.
	SignUpTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staybook_signups_total",
			Help: "Signup attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// LogInTotal counts login attempts by outcome.
	LogInTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staybook_logins_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// ReservationTotal counts reservation attempts by outcome.
	ReservationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staybook_reservations_total",
			Help: "Reservation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// FavoriteTotal counts favorite mutations by action and outcome.
	FavoriteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staybook_favorites_total",
			Help: "Favorite mutations by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
)

// Outcome labels shared by the counters.
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// GinMiddleware records request duration per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		startedAt := time.Now()
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(
			ctx.Request.Method,
			route,
			strconv.Itoa(ctx.Writer.Status()),
		).Observe(time.Since(startedAt).Seconds())
	}
}
