package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const unmatchedRoute = "unmatched"

type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	loginAttempts *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
}

// NewMetrics registers the HTTP collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limiter_blocked_total",
				Help: "Total requests blocked by the rate limiter",
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(
		m.requests,
		m.duration,
		m.loginAttempts,
		m.rateLimited,
	)
	return m
}

func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.requests.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Inc()
		m.duration.
			WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}

// LoginOutcomes classifies each login response after the handler ran.
func (m *Metrics) LoginOutcomes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		var outcome string
		switch status := c.Writer.Status(); {
		case status == http.StatusOK:
			outcome = "success"
		case status == http.StatusUnauthorized:
			outcome = "rejected"
		case status == http.StatusTooManyRequests:
			outcome = "rate_limited"
		case status < http.StatusInternalServerError:
			outcome = "invalid"
		default:
			outcome = "error"
		}
		m.loginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) observeBlocked(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}
