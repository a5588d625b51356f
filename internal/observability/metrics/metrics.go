package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters for the lead intake pipeline.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	rateLimitedTotal prometheus.Counter
	fallbackTotal    prometheus.Counter
	emailTotal       *prometheus.CounterVec
	matchesSentTotal prometheus.Counter
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mai",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by outcome",
		}, []string{"outcome"}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mai",
			Subsystem: "leads",
			Name:      "rate_limited_total",
			Help:      "Submissions rejected by the rate limiter",
		}),
		fallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mai",
			Subsystem: "leads",
			Name:      "persist_fallback_total",
			Help:      "Inserts that used the fallback access path",
		}),
		emailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mai",
			Subsystem: "notify",
			Name:      "email_total",
			Help:      "Notification email attempts by status",
		}, []string{"status"}),
		matchesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mai",
			Subsystem: "matches",
			Name:      "sent_total",
			Help:      "Preference-match notification emails sent",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.rateLimitedTotal, m.fallbackTotal, m.emailTotal, m.matchesSentTotal)
	return m
}

func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}

func (m *LeadMetrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

func (m *LeadMetrics) ObserveEmail(status string) {
	if m == nil {
		return
	}
	m.emailTotal.WithLabelValues(status).Inc()
}

func (m *LeadMetrics) ObserveMatchesSent(n int) {
	if m == nil {
		return
	}
	m.matchesSentTotal.Add(float64(n))
}
