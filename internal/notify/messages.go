package notify

import (
	"encoding/json"
	"time"

	"statement-distributor/internal/distributor"
	"statement-distributor/internal/models"
)

// RunCompletedMessage announces the outcome of a distribution run
type RunCompletedMessage struct {
	RunID      string                `json:"run_id"`
	Source     models.Source         `json:"source"`
	FromDate   string                `json:"from_date"`
	ToDate     string                `json:"to_date"`
	DryRun     bool                  `json:"dry_run"`
	Total      int                   `json:"total"`
	Successful int                   `json:"successful"`
	NoActivity int                   `json:"no_activity"`
	Skipped    int                   `json:"skipped"`
	Failed     int                   `json:"failed"`
	Failures   []distributor.Failure `json:"failures"`
	Timestamp  time.Time             `json:"timestamp"`
}

// NewRunCompletedMessage builds the message for a finished run
func NewRunCompletedMessage(runID string, source models.Source, dryRun bool, stats *distributor.RunStatistics) *RunCompletedMessage {
	failures := stats.Failed
	if failures == nil {
		failures = []distributor.Failure{}
	}
	return &RunCompletedMessage{
		RunID:      runID,
		Source:     source,
		FromDate:   stats.Period.FromDate(),
		ToDate:     stats.Period.ToDate(),
		DryRun:     dryRun,
		Total:      stats.TotalGroups,
		Successful: len(stats.Successful),
		NoActivity: len(stats.NoActivity),
		Skipped:    len(stats.Skipped),
		Failed:     len(stats.Failed),
		Failures:   failures,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunCompletedMessageFromJSON creates a message from JSON bytes
func RunCompletedMessageFromJSON(data []byte) (*RunCompletedMessage, error) {
	var msg RunCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
