package logger

import (
	"time"
)

// ProgressTracker logs step-by-step progress of a run over a known number of items.
type ProgressTracker struct {
	logger    Logger
	operation string
	total     int
	current   int
	startTime time.Time
}

// NewProgressTracker creates a new progress tracker and logs the start of the operation.
func NewProgressTracker(log Logger, operation string, total int) *ProgressTracker {
	tracker := &ProgressTracker{
		logger:    log.WithComponent("progress"),
		operation: operation,
		total:     total,
		startTime: time.Now(),
	}

	tracker.logger.WithFields(Fields{
		"operation": operation,
		"total":     total,
	}).Info("Starting operation")

	return tracker
}

// Step advances the counter and logs which item is being worked on.
func (p *ProgressTracker) Step(item string) {
	p.current++
	p.logger.WithFields(Fields{
		"operation": p.operation,
		"item":      item,
		"position":  p.current,
		"total":     p.total,
	}).Debugf("[%d/%d] %s", p.current, p.total, item)
}

// Current returns the number of steps taken so far.
func (p *ProgressTracker) Current() int {
	return p.current
}

// Complete logs the final count and elapsed time.
func (p *ProgressTracker) Complete() {
	p.logger.WithFields(Fields{
		"operation": p.operation,
		"total":     p.total,
		"processed": p.current,
		"duration":  time.Since(p.startTime).Round(time.Millisecond).String(),
	}).Info("Operation completed")
}
