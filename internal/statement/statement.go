package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"statement-distributor/internal/models"
	apperrors "statement-distributor/pkg/errors"
)

var rampHeader = []string{
	"Accounting Date-Time", "User Name", "Card Name", "Last 4",
	"Original Amount", "Settled Amount", "Merchant", "GL Account", "State",
}

var billHeader = []string{
	"Invoice Date", "Vendor Name", "Invoice Number", "Due Date",
	"Amount (USD)", "Paid Amount (USD)", "Payment Status", "Approval Status",
	"GL Account", "GL Account Name",
}

// Header returns the fixed column header for source
func Header(source models.Source) []string {
	if source == models.SourceBill {
		return billHeader
	}
	return rampHeader
}

func row(source models.Source, r models.TransactionRecord) []string {
	if source == models.SourceBill {
		return []string{
			FormatTimestamp(r.OccurredAt),
			r.CounterpartyName,
			r.ReferenceNumber,
			FormatTimestamp(r.DueAt),
			FormatAmount(r.GrossAmount),
			FormatAmount(r.SettledAmount),
			r.Status,
			r.ApprovalState,
			r.GLAccountCode,
			r.GLAccountName,
		}
	}
	return []string{
		FormatTimestamp(r.OccurredAt),
		r.HolderName,
		r.CardName,
		r.CardLastFour,
		FormatAmount(r.GrossAmount),
		FormatAmount(r.SettledAmount),
		r.CounterpartyName,
		r.GLAccountCode,
		r.Status,
	}
}

// Render writes the header and one CSV row per record, in the order given.
func Render(w io.Writer, source models.Source, records []models.TransactionRecord) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write(Header(source)); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(row(source, r)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// RenderBytes renders the statement into memory
func RenderBytes(source models.Source, records []models.TransactionRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, source, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var unsafeName = strings.NewReplacer("/", "-", "\\", "-")

// FileName builds "{Prefix}-{Group}-{From}-{To}.csv" with path separators in the group
// name replaced.
func FileName(source models.Source, group string, period models.SubPeriod) string {
	return fmt.Sprintf("%s-%s-%s-%s.csv", source.FilePrefix(), unsafeName.Replace(group), period.FromDate(), period.ToDate())
}

// WriteFile writes content under outputDir, creating the directory if needed,
// and returns the full path.
func WriteFile(outputDir, name string, content []byte) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", apperrors.RenderError(apperrors.CodeDirectoryFailed, outputDir, err)
	}

	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", apperrors.RenderError(apperrors.CodeWriteFailed, path, err)
	}
	return path, nil
}
