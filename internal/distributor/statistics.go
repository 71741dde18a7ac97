package distributor

import (
	"statement-distributor/internal/models"
)

// Outcome is the recorded result of one group
type Outcome string

const (
	OutcomeSuccessful Outcome = "successful"
	OutcomeNoActivity Outcome = "no_activity"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
)

// Failure names a failed group and why it failed
type Failure struct {
	Group  string `json:"group"`
	Reason string `json:"reason"`
}

// RunStatistics aggregates group outcomes for one run. It is written only by the
// Controller, one group at a time.
type RunStatistics struct {
	Period      models.SubPeriod `json:"period"`
	TotalGroups int              `json:"total_groups"`
	Successful  []string         `json:"successful"`
	NoActivity  []string         `json:"no_activity"`
	Skipped     []string         `json:"skipped"`
	Failed      []Failure        `json:"failed"`
}

// NewRunStatistics creates statistics for a run over period covering total groups
func NewRunStatistics(period models.SubPeriod, total int) *RunStatistics {
	return &RunStatistics{Period: period, TotalGroups: total}
}

// Record adds a group result to the matching category
func (s *RunStatistics) Record(result GroupResult) {
	switch result.Outcome {
	case OutcomeSuccessful:
		s.Successful = append(s.Successful, result.Group)
	case OutcomeNoActivity:
		s.NoActivity = append(s.NoActivity, result.Group)
	case OutcomeSkipped:
		s.Skipped = append(s.Skipped, result.Group)
	default:
		s.Failed = append(s.Failed, Failure{Group: result.Group, Reason: result.Reason})
	}
}

// Processed returns how many groups have been recorded
func (s *RunStatistics) Processed() int {
	return len(s.Successful) + len(s.NoActivity) + len(s.Skipped) + len(s.Failed)
}

// HasFailures reports whether any group failed
func (s *RunStatistics) HasFailures() bool {
	return len(s.Failed) > 0
}

// ExitCode is 1 when any group failed, 0 otherwise
func (s *RunStatistics) ExitCode() int {
	if s.HasFailures() {
		return 1
	}
	return 0
}
