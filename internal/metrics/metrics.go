package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the contest collectors. A nil *Metrics records nothing.
type Metrics struct {
	attemptsStarted prometheus.Counter
	submissions     *prometheus.CounterVec
	scoreRatio      prometheus.Histogram
	suggestions     *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg builds unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attemptsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "contest_attempts_started_total",
			Help: "Attempts started by candidates",
		}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contest_submissions_total",
			Help: "Submissions recorded, by finalization trigger",
		}, []string{"trigger"}),
		scoreRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "contest_submission_score_ratio",
			Help:    "Auto-graded score divided by the attainable total",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		suggestions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contest_suggestions_total",
			Help: "Trial suggestion requests, by trial type and outcome",
		}, []string{"type", "outcome"}),
	}
}

func (m *Metrics) AttemptStarted() {
	if m == nil {
		return
	}
	m.attemptsStarted.Inc()
}

func (m *Metrics) SubmissionRecorded(trigger string, score, total int) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(trigger).Inc()
	if total > 0 {
		m.scoreRatio.Observe(float64(score) / float64(total))
	}
}

func (m *Metrics) Suggestion(trialType, outcome string) {
	if m == nil {
		return
	}
	m.suggestions.WithLabelValues(trialType, outcome).Inc()
}
