// Package distributor drives statement distribution for a run.
//
// For every selected account group the Controller extracts the records of each
// sub-period, keeps those whose GL code falls in the group's ranges, merges the
// periods into one statement and mails it to the group's contact. Groups with no
// records get a no-activity notice instead. Every group ends in exactly one
// recorded outcome; a failure in one group never stops the others.
//
// Example usage:
//
//	ctrl := distributor.NewController(cfg, extractor, mailer.NewDryRunMailer(log), log)
//	stats := ctrl.Run(ctx, selectedGroups, periods)
//	os.Exit(stats.ExitCode())
package distributor

import (
	"context"
	"fmt"

	"statement-distributor/internal/aggregate"
	"statement-distributor/internal/classifier"
	"statement-distributor/internal/extract"
	"statement-distributor/internal/mailer"
	"statement-distributor/internal/models"
	"statement-distributor/internal/statement"
	apperrors "statement-distributor/pkg/errors"
	"statement-distributor/pkg/logger"
)

// State is a step in the life of one group within a run
type State string

const (
	StatePending       State = "pending"
	StateExtracting    State = "extracting"
	StateNoActivity    State = "no_activity"
	StateRendering     State = "rendering"
	StateSending       State = "sending"
	StateInvalidConfig State = "invalid_config"
	StateRecorded      State = "recorded"
)

// GroupResult is the outcome of processing one group
type GroupResult struct {
	Group         string
	Outcome       Outcome
	Reason        string
	Records       int
	StatementPath string
	States        []State
	Err           error
}

// Config holds the settings the Controller needs
type Config struct {
	Source         models.Source
	OutputDir      string
	Template       mailer.Template
	SkipNoActivity bool
}

// Controller processes account groups one after another.
type Controller struct {
	config    Config
	extractor extract.Extractor
	mailer    mailer.Mailer
	logger    logger.Logger
}

// NewController creates a Controller. The template's no-activity texts are
// defaulted from the source title when missing.
func NewController(config Config, extractor extract.Extractor, m mailer.Mailer, log logger.Logger) *Controller {
	config.Template = config.Template.WithDefaults(config.Source.Title())
	return &Controller{
		config:    config,
		extractor: extractor,
		mailer:    m,
		logger:    log.WithComponent("distributor"),
	}
}

// Run processes every group over periods and returns the run statistics.
func (c *Controller) Run(ctx context.Context, groups []models.AccountGroup, periods []models.SubPeriod) *RunStatistics {
	span := models.Span(periods)
	stats := NewRunStatistics(span, len(groups))

	c.logger.WithFields(logger.Fields{
		"groups":      len(groups),
		"sub_periods": len(periods),
	}).Infof("Processing statements for %s", span)

	tracker := logger.NewProgressTracker(c.logger, "distribute", len(groups))
	for _, group := range groups {
		tracker.Step(group.Name)
		result := c.ProcessGroup(ctx, group, periods)
		stats.Record(result)
	}
	tracker.Complete()

	c.logger.Infof("Processing complete. Successful: %d, Sent (no activity): %d, Skipped: %d, Failed: %d",
		len(stats.Successful), len(stats.NoActivity), len(stats.Skipped), len(stats.Failed))

	return stats
}

// ProcessGroup runs one group through extract, merge, render and send.
// It never returns an error; failures are reported in the result.
func (c *Controller) ProcessGroup(ctx context.Context, group models.AccountGroup, periods []models.SubPeriod) GroupResult {
	result := GroupResult{Group: group.Name, States: []State{StatePending}}
	log := c.logger.WithField("group", group.Name)

	if !group.IsDistributable() {
		code := apperrors.CodeMissingContact
		if group.Name == "" {
			code = apperrors.CodeMissingName
		}
		err := apperrors.InvalidGroupConfig(code, group.Name)
		log.WithError(err).Error("Invalid account group configuration")
		return failed(result, StateInvalidConfig, "invalid configuration (missing group name or email)", err)
	}

	log.Infof("Processing account group: %s", group.Name)
	result.States = append(result.States, StateExtracting)

	records, err := c.collect(ctx, group, periods)
	if err != nil {
		log.WithError(err).Error("Failed to extract records")
		return failed(result, "", reason("extraction failed", err), err)
	}
	result.Records = len(records)

	span := models.Span(periods)
	vars := mailer.Vars{Group: group.Name, FromDate: span.FromDate(), ToDate: span.ToDate()}

	if len(records) == 0 {
		return c.noActivity(ctx, result, group, vars, log)
	}

	result.States = append(result.States, StateRendering)
	content, err := statement.RenderBytes(c.config.Source, records)
	if err != nil {
		err = apperrors.RenderError(apperrors.CodeWriteFailed, group.Name, err)
		log.WithError(err).Error("Failed to render statement")
		return failed(result, "", reason("render failed", err), err)
	}

	name := statement.FileName(c.config.Source, group.Name, span)
	path, err := statement.WriteFile(c.config.OutputDir, name, content)
	if err != nil {
		log.WithError(err).Error("Failed to write statement")
		return failed(result, "", reason("render failed", err), err)
	}
	result.StatementPath = path
	log.WithField("records", len(records)).Infof("Generated statement with %d records: %s", len(records), path)

	result.States = append(result.States, StateSending)
	msg := c.config.Template.Statement(group.ContactEmail, vars, &mailer.Attachment{Filename: name, Content: content})
	if err := c.mailer.Send(ctx, msg); err != nil {
		log.WithError(err).Errorf("Failed to send email to %s", group.ContactEmail)
		return failed(result, "", reason("send failed", err), err)
	}

	result.Outcome = OutcomeSuccessful
	result.States = append(result.States, StateRecorded)
	return result
}

func (c *Controller) noActivity(ctx context.Context, result GroupResult, group models.AccountGroup, vars mailer.Vars, log logger.Logger) GroupResult {
	result.States = append(result.States, StateNoActivity)

	if c.config.SkipNoActivity {
		log.Infof("Skipping %s: no transactions found for date range", group.Name)
		result.Outcome = OutcomeSkipped
		result.Reason = "no transactions"
		result.States = append(result.States, StateRecorded)
		return result
	}

	log.Infof("Sending no-activity email to %s: no records found for date range", group.Name)
	if err := c.mailer.Send(ctx, c.config.Template.NoActivity(group.ContactEmail, vars)); err != nil {
		log.WithError(err).Errorf("Failed to send no-activity email to %s", group.ContactEmail)
		return failed(result, "", reason("send failed", err), err)
	}

	result.Outcome = OutcomeNoActivity
	result.States = append(result.States, StateRecorded)
	return result
}

// collect extracts, filters and merges the group's records over all periods.
func (c *Controller) collect(ctx context.Context, group models.AccountGroup, periods []models.SubPeriod) ([]models.TransactionRecord, error) {
	results := make([]aggregate.PeriodResult, 0, len(periods))
	for _, p := range periods {
		records, err := c.extractor.Extract(ctx, p)
		if err != nil {
			return nil, apperrors.WrapIfNeeded(err, apperrors.CategoryExtraction, apperrors.CodeQueryFailed, "extract "+p.String())
		}
		results = append(results, aggregate.PeriodResult{Period: p, Records: classifier.Filter(records, group)})
	}
	return aggregate.Merge(results), nil
}

func failed(result GroupResult, state State, why string, err error) GroupResult {
	if state != "" {
		result.States = append(result.States, state)
	}
	result.Outcome = OutcomeFailed
	result.Reason = why
	result.Err = err
	result.States = append(result.States, StateRecorded)
	return result
}

// reason prefixes the underlying cause, leaving out suggestions meant for the console.
func reason(prefix string, err error) string {
	distErr, ok := apperrors.AsDistributorError(err)
	switch {
	case !ok:
		return fmt.Sprintf("%s: %v", prefix, err)
	case distErr.Cause != nil:
		return fmt.Sprintf("%s: %v", prefix, distErr.Cause)
	default:
		return fmt.Sprintf("%s: %s", prefix, distErr.Message)
	}
}
