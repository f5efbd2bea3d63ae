package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registerAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usercenter_register_attempts_total",
		Help: "Number of register attempts grouped by status.",
	}, []string{"status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usercenter_login_attempts_total",
		Help: "Number of login attempts grouped by status.",
	}, []string{"status"})

	logoutEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usercenter_logout_events_total",
		Help: "Number of logout attempts grouped by status.",
	}, []string{"status"})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usercenter_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})
)

// IncRegister increments the register counter.
func IncRegister(status string) {
	registerAttempts.WithLabelValues(status).Inc()
}

// IncLogin increments the login counter.
func IncLogin(status string) {
	loginAttempts.WithLabelValues(status).Inc()
}

// IncLogout increments the logout counter.
func IncLogout(status string) {
	logoutEvents.WithLabelValues(status).Inc()
}

// IncRateLimit increments the rate-limit hit counter.
func IncRateLimit(name string) {
	rateLimitHits.WithLabelValues(name).Inc()
}
