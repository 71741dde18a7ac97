package reporter

import (
	"context"
	"fmt"

	"statement-distributor/internal/distributor"
	"statement-distributor/internal/mailer"
	"statement-distributor/pkg/logger"
)

// SummaryConfig controls delivery of the run summary
type SummaryConfig struct {
	Enabled   bool
	Recipient string
	Title     string
}

// SummaryReporter mails the execution summary after a run.
type SummaryReporter struct {
	config SummaryConfig
	mailer mailer.Mailer
	logger logger.Logger
}

// NewSummaryReporter creates a SummaryReporter
func NewSummaryReporter(config SummaryConfig, m mailer.Mailer, log logger.Logger) *SummaryReporter {
	return &SummaryReporter{config: config, mailer: m, logger: log.WithComponent("reporter")}
}

// Subject returns the summary mail subject for stats
func (r *SummaryReporter) Subject(stats *distributor.RunStatistics) string {
	return fmt.Sprintf("%s Statement Distribution Summary - %s to %s",
		r.config.Title, stats.Period.FromDate(), stats.Period.ToDate())
}

// Send mails the summary unless disabled or dryRun is set. It reports whether a
// message was handed to the mailer; delivery errors are logged, not returned.
func (r *SummaryReporter) Send(ctx context.Context, stats *distributor.RunStatistics, dryRun bool) bool {
	if !r.config.Enabled {
		r.logger.Info("Summary report is disabled in configuration")
		return false
	}
	if dryRun {
		r.logger.Info("Skipping summary report in dry-run mode")
		return false
	}
	if r.config.Recipient == "" {
		r.logger.Warn("Summary report enabled but no recipient configured")
		return false
	}

	msg := mailer.Message{
		To:      r.config.Recipient,
		Subject: r.Subject(stats),
		Body:    GenerateSummary(stats, r.config.Title),
	}
	if err := r.mailer.Send(ctx, msg); err != nil {
		r.logger.WithError(err).Errorf("Failed to send summary report to %s", r.config.Recipient)
		return false
	}

	r.logger.Infof("Summary report sent to %s", r.config.Recipient)
	return true
}
