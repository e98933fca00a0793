package metrics

import "time"

// Comment sources
const (
	SourceHuman = "human"
	SourceBot   = "bot"
)

// Director run outcomes
const (
	OutcomeSuccess = "success"
	OutcomeReused  = "reused"
	OutcomeFailure = "failure"
)

// IncrementCommentCreated counts a new comment from the given source
func (m *Metrics) IncrementCommentCreated(source string) {
	m.safeExecute("IncrementCommentCreated", func() {
		m.CommentsCreatedTotal.WithLabelValues(source).Inc()
	})
}

// IncrementCommentDeleted counts an administrative deletion
func (m *Metrics) IncrementCommentDeleted() {
	m.safeExecute("IncrementCommentDeleted", func() {
		m.CommentsDeletedTotal.Inc()
	})
}

// IncrementJobEnqueued counts a created job
func (m *Metrics) IncrementJobEnqueued() {
	m.safeExecute("IncrementJobEnqueued", func() {
		m.JobsEnqueuedTotal.Inc()
	})
}

// RecordJobOutcome counts one processed job by its sweep status
func (m *Metrics) RecordJobOutcome(status string) {
	m.safeExecute("RecordJobOutcome", func() {
		switch status {
		case "success":
			m.JobsCompletedTotal.Inc()
		case "failed":
			m.JobsFailedTotal.Inc()
		case "skipped":
			m.JobsSkippedTotal.Inc()
		}
	})
}

// RecordDirectorRun records a director run outcome and duration.
// stage is only meaningful for failures.
func (m *Metrics) RecordDirectorRun(outcome, stage string, duration time.Duration) {
	m.safeExecute("RecordDirectorRun", func() {
		m.DirectorRunsTotal.WithLabelValues(outcome).Inc()
		m.DirectorRunDuration.Observe(duration.Seconds())
		if outcome == OutcomeFailure {
			m.DirectorFailuresTotal.WithLabelValues(stage).Inc()
		}
	})
}

// ObserveSweep records how long a sweep took
func (m *Metrics) ObserveSweep(duration time.Duration) {
	m.safeExecute("ObserveSweep", func() {
		m.SweepDuration.Observe(duration.Seconds())
	})
}

// SetPendingJobs sets the pending jobs gauge
func (m *Metrics) SetPendingJobs(count int64) {
	m.safeExecute("SetPendingJobs", func() {
		m.PendingJobs.Set(float64(count))
	})
}

// SetApprovedComments sets the approved comments gauge
func (m *Metrics) SetApprovedComments(count int64) {
	m.safeExecute("SetApprovedComments", func() {
		m.ApprovedComments.Set(float64(count))
	})
}

// SetActivePersonas sets the active personas gauge
func (m *Metrics) SetActivePersonas(count int64) {
	m.safeExecute("SetActivePersonas", func() {
		m.ActivePersonas.Set(float64(count))
	})
}
