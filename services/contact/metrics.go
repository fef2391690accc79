package contact

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes, one per terminal state of a POST /contact.
const (
	outcomeRejected      = "rejected"
	outcomePersistFailed = "persist_failed"
	outcomeSent          = "sent"
	outcomeEmailFailed   = "email_failed"
)

type metrics struct {
	submissions *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submissions by terminal outcome.",
		}, []string{"outcome"}),
	}
}

func (m *metrics) observe(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}
