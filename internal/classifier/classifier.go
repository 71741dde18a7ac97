package classifier

import (
	"statement-distributor/internal/models"
)

// IsInGroup reports whether code falls inside any of the group's ranges.
//
// Ranges compare as strings, so "700" sorts after "6999". Configure codes with a
// fixed width for numeric ranges to behave numerically.
func IsInGroup(code string, group models.AccountGroup) bool {
	if code == "" {
		return false
	}

	for _, r := range group.Ranges {
		if r.Start <= code && code <= r.End {
			return true
		}
	}

	return false
}

// Filter returns the records belonging to group, in their original order.
// The input slice is not modified.
func Filter(records []models.TransactionRecord, group models.AccountGroup) []models.TransactionRecord {
	matched := make([]models.TransactionRecord, 0, len(records))
	for _, record := range records {
		if IsInGroup(record.GLAccountCode, group) {
			matched = append(matched, record)
		}
	}
	return matched
}
