package aggregate

import (
	"sort"

	"statement-distributor/internal/models"
)

// PeriodResult is the record set extracted for one sub-period
type PeriodResult struct {
	Period  models.SubPeriod
	Records []models.TransactionRecord
}

// Merge coalesces per-period results into one record sequence.
//
// A single period is returned in extraction order. Several periods are concatenated
// in the order given and stable sorted by GL code, then by occurrence time, so the
// result does not depend on the order periods were queried in.
func Merge(results []PeriodResult) []models.TransactionRecord {
	total := 0
	for _, r := range results {
		total += len(r.Records)
	}

	merged := make([]models.TransactionRecord, 0, total)
	for _, r := range results {
		merged = append(merged, r.Records...)
	}

	if len(results) <= 1 {
		return merged
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return less(merged[i], merged[j])
	})
	return merged
}

func less(a, b models.TransactionRecord) bool {
	if a.GLAccountCode != b.GLAccountCode {
		return a.GLAccountCode < b.GLAccountCode
	}
	return occurredBefore(a.OccurredAt, b.OccurredAt)
}

// occurredBefore orders by instant. Values that do not parse sort ahead of ones that
// do and compare as text among themselves.
func occurredBefore(a, b models.Timestamp) bool {
	ta, errA := a.Time()
	tb, errB := b.Time()
	switch {
	case errA != nil && errB != nil:
		return a < b
	case errA != nil:
		return true
	case errB != nil:
		return false
	default:
		return ta.Before(tb)
	}
}
