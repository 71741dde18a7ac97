package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"statement-distributor/cmd/distributor/config"
	"statement-distributor/internal/distributor"
	"statement-distributor/internal/extract"
	"statement-distributor/internal/groups"
	"statement-distributor/internal/mailer"
	"statement-distributor/internal/models"
	"statement-distributor/internal/notify"
	"statement-distributor/internal/period"
	"statement-distributor/internal/reporter"
	"statement-distributor/internal/store"
	apperrors "statement-distributor/pkg/errors"
	"statement-distributor/pkg/logger"
)

// Flags for the distribute command
var (
	fromDate          string
	toDate            string
	fromMonth         string
	toMonth           string
	accountGroups     string
	sendEmails        bool
	listAccountGroups bool
	reportFormat      string
)

// now is the clock used to default the period
var now = time.Now

// distributeCmd represents the distribute command
var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Generate and email account group statements",
	Long: `Distribute builds one CSV statement per account group for the requested period
and emails it to the group's contact. Groups without activity receive a
no-activity notice. Without --send-emails nothing leaves the machine: the
emails are logged and the summary report is skipped.

The period defaults to the previous calendar month. Use either a date range
(--from-date/--to-date) or a month range (--from-month/--to-month); a month
range produces one statement covering every month in it.

Examples:
  # Dry run for last month
  distributor distribute --config config.json

  # Specific groups, explicit dates, real send
  distributor distribute --account-groups "infrastructure,brand" \
    --from-date 2024-01-01 --to-date 2024-01-31 --send-emails

  # Quarter as one statement per group
  distributor distribute --from-month 2024-01 --to-month 2024-03`,

	RunE: runDistribute,
}

func init() {
	rootCmd.AddCommand(distributeCmd)

	distributeCmd.Flags().StringVar(&fromDate, "from-date", "", "start date YYYY-MM-DD (default: first day of previous month)")
	distributeCmd.Flags().StringVar(&toDate, "to-date", "", "end date YYYY-MM-DD (default: last day of the start month)")
	distributeCmd.Flags().StringVar(&fromMonth, "from-month", "", "first month YYYY-MM")
	distributeCmd.Flags().StringVar(&toMonth, "to-month", "", "last month YYYY-MM (default: --from-month)")
	distributeCmd.Flags().StringVar(&accountGroups, "account-groups", "", "comma-separated account groups to process (case-insensitive, default: all)")
	distributeCmd.Flags().BoolVar(&sendEmails, "send-emails", false, "actually send emails (default: dry run)")
	distributeCmd.Flags().BoolVar(&listAccountGroups, "list-account-groups", false, "list available account groups and exit")
	distributeCmd.Flags().StringVar(&reportFormat, "report-format", "text", "console summary format: text, json")
	distributeCmd.Flags().String("source", "", "statement source: ramp, bill (overrides config)")

	bindFlag(v, "source", distributeCmd, "source")
}

// validateDateFlags checks the combination of period flags
func validateDateFlags() error {
	if (fromDate != "" || toDate != "") && (fromMonth != "" || toMonth != "") {
		return apperrors.ConfigError(apperrors.CodeConfigConflict, "period", "date and month flags", nil).
			WithSuggestion("use either --from-date/--to-date or --from-month/--to-month")
	}
	return nil
}

// resolvePeriods turns the period flags into sub-periods. A missing lower
// bound defaults to the previous month.
func resolvePeriods(at time.Time) ([]models.SubPeriod, error) {
	if fromMonth != "" || toMonth != "" {
		return period.ResolveMonths(fromMonth, toMonth, at)
	}
	p, err := period.ResolveDates(fromDate, toDate, at)
	if err != nil {
		return nil, err
	}
	return []models.SubPeriod{p}, nil
}

func runDistribute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closer, err := logger.NewLogger(cfg.LoggerConfig(verbose))
	if err != nil {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "logging", cfg.Logging.LogDir, err)
	}
	defer closer.Close()

	all, err := groups.Load(cfg.AccountGroupsPath)
	if err != nil {
		return err
	}
	candidates, err := groups.Candidates(all)
	if err != nil {
		return err
	}

	if listAccountGroups {
		return groups.List(cmd.OutOrStdout(), candidates)
	}

	if err := validateDateFlags(); err != nil {
		return err
	}
	format := reporter.OutputFormat(reportFormat)
	if !format.IsValid() {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "--report-format", reportFormat, nil)
	}

	selected, err := groups.Select(candidates, accountGroups, log)
	if err != nil {
		return err
	}

	periods, err := resolvePeriods(now())
	if err != nil {
		return err
	}
	log.Infof("Statement period: %s", describePeriods(periods))

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	source := cfg.SourceKind()
	extractor, err := extract.New(source, db)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log = log.WithFields(logger.Fields{"run_id": runID, "source": source})

	dryRun := !sendEmails
	var m mailer.Mailer
	if dryRun {
		log.Info("Running in DRY RUN mode: emails will not be sent")
		m = mailer.NewDryRunMailer(log)
	} else {
		log.Info("Running in SEND mode: emails will be sent")
		m = mailer.NewSMTPMailer(cfg.MailerConfig(), log)
	}

	ctrl := distributor.NewController(cfg.DistributorConfig(), extractor, m, log)
	stats := ctrl.Run(ctx, selected, periods)

	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{Format: format, Title: source.Title()})
	if err != nil {
		return apperrors.InternalError(apperrors.CodeUnexpectedError, "report", err)
	}
	if err := generator.GenerateReport(stats, cmd.OutOrStdout()); err != nil {
		log.WithError(err).Warn("Failed to print run summary")
	}

	reporter.NewSummaryReporter(cfg.SummaryConfig(), m, log).Send(ctx, stats, dryRun)
	publishRunCompleted(ctx, cfg, runID, dryRun, stats, log)

	if stats.HasFailures() {
		return &runFailedError{failed: len(stats.Failed)}
	}
	return nil
}

// newPublisher is replaced in tests
var newPublisher = func(cfg notify.Config, log logger.Logger) (notify.Publisher, error) {
	return notify.NewClient(cfg, log)
}

// openPublisher connects to the broker, or discards events when notifications are disabled
func openPublisher(cfg *config.Config, log logger.Logger) (notify.Publisher, error) {
	if !cfg.Notify.Enabled {
		return notify.NopPublisher{}, nil
	}
	return newPublisher(cfg.NotifyConfig(), log)
}

// publishRunCompleted announces the run when notifications are enabled. Failures are logged only.
func publishRunCompleted(ctx context.Context, cfg *config.Config, runID string, dryRun bool, stats *distributor.RunStatistics, log logger.Logger) {
	if dryRun {
		log.Info("Skipping run notification in dry-run mode")
		return
	}

	publisher, err := openPublisher(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to connect to message broker")
		return
	}
	defer publisher.Close()

	msg := notify.NewRunCompletedMessage(runID, cfg.SourceKind(), dryRun, stats)
	if err := publisher.PublishRunCompleted(ctx, msg); err != nil {
		log.WithError(err).Error("Failed to publish run notification")
	}
}

func describePeriods(periods []models.SubPeriod) string {
	if len(periods) == 1 {
		return periods[0].String()
	}
	return fmt.Sprintf("%s (%d months)", models.Span(periods), len(periods))
}
