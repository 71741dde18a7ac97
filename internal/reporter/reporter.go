// Package reporter renders the statistics of a distribution run.
//
// Two formats are supported:
//   - Text: the execution summary mailed to the treasury and printed on the console
//   - JSON: the same statistics as structured data for programmatic consumption
//
// The SummaryReporter mails the text summary to the configured recipient after
// a live run. Summary delivery problems are logged and never change the outcome
// of the run itself.
//
// Example usage:
//
//	gen, err := reporter.NewReportGenerator(&reporter.ReportConfig{Format: reporter.FormatText, Title: "Ramp"})
//	err = gen.GenerateReport(stats, os.Stdout)
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"statement-distributor/internal/distributor"
)

// OutputFormat is a supported report format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// ReportConfig holds the report generation options
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Title prefixes the summary heading, e.g. "Ramp" or "Bill.com"
	Title string `json:"title"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format: FormatText,
		Title:  "Statement Distributor",
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("report title cannot be empty")
	}
	return nil
}

// ReportGenerator writes run reports in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the report for stats to writer
func (rg *ReportGenerator) GenerateReport(stats *distributor.RunStatistics, writer io.Writer) error {
	if stats == nil {
		return fmt.Errorf("run statistics cannot be nil")
	}

	switch rg.config.Format {
	case FormatText:
		_, err := io.WriteString(writer, GenerateSummary(stats, rg.config.Title)+"\n")
		return err
	case FormatJSON:
		return rg.generateJSONReport(stats, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

type jsonReport struct {
	Title       string                `json:"title"`
	FromDate    string                `json:"from_date"`
	ToDate      string                `json:"to_date"`
	TotalGroups int                   `json:"total_groups"`
	Counts      jsonCounts            `json:"counts"`
	Successful  []string              `json:"successful"`
	NoActivity  []string              `json:"no_activity"`
	Skipped     []string              `json:"skipped"`
	Failed      []distributor.Failure `json:"failed"`
	Status      string                `json:"status"`
}

type jsonCounts struct {
	Successful int `json:"successful"`
	NoActivity int `json:"no_activity"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

func (rg *ReportGenerator) generateJSONReport(stats *distributor.RunStatistics, writer io.Writer) error {
	report := jsonReport{
		Title:       rg.config.Title,
		FromDate:    stats.Period.FromDate(),
		ToDate:      stats.Period.ToDate(),
		TotalGroups: stats.TotalGroups,
		Counts: jsonCounts{
			Successful: len(stats.Successful),
			NoActivity: len(stats.NoActivity),
			Skipped:    len(stats.Skipped),
			Failed:     len(stats.Failed),
		},
		Successful: nonNil(stats.Successful),
		NoActivity: nonNil(stats.NoActivity),
		Skipped:    nonNil(stats.Skipped),
		Failed:     stats.Failed,
		Status:     status(stats),
	}
	if report.Failed == nil {
		report.Failed = []distributor.Failure{}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// GenerateSummary renders the plain text execution summary of a run.
func GenerateSummary(stats *distributor.RunStatistics, title string) string {
	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("%s - Execution Summary", title)
	add("%s", strings.Repeat("=", 50))
	add("")
	add("Date Range: %s to %s", stats.Period.FromDate(), stats.Period.ToDate())
	add("Total Account Groups: %d", stats.TotalGroups)
	add("Successful: %d", len(stats.Successful))
	add("Sent (no activity): %d", len(stats.NoActivity))
	if len(stats.Skipped) > 0 {
		add("Skipped (no transactions): %d", len(stats.Skipped))
	}
	add("Failed: %d", len(stats.Failed))
	add("")

	section := func(heading string, names []string) {
		if len(names) == 0 {
			return
		}
		add("%s", heading)
		for _, name := range names {
			add("  - %s", name)
		}
		add("")
	}
	section("Account Groups Processed Successfully:", stats.Successful)
	section("Account Groups Sent (No Activity):", stats.NoActivity)
	section("Account Groups Skipped (no transactions):", stats.Skipped)

	if len(stats.Failed) > 0 {
		add("Account Groups Failed:")
		for _, f := range stats.Failed {
			add("  - %s: %s", f.Group, f.Reason)
		}
		add("")
	}

	add("Status: %s", status(stats))
	return strings.Join(lines, "\n")
}

func status(stats *distributor.RunStatistics) string {
	if stats.HasFailures() {
		return "COMPLETED WITH ERRORS"
	}
	return "COMPLETED SUCCESSFULLY"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
