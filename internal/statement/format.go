package statement

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"statement-distributor/internal/models"
)

const displayLayout = "2006-01-02 15:04:05"

// FormatAmount renders cents as dollars with thousands separators, e.g. "$1,234.56".
// Negative amounts keep the sign after the dollar symbol ("$-12.50"). A nil amount is "$0.00".
func FormatAmount(cents *int64) string {
	if cents == nil {
		return "$0.00"
	}

	v := *cents
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("$%s%s.%02d", sign, humanize.Comma(v/100), v%100)
}

// FormatTimestamp renders an ISO timestamp as "YYYY-MM-DD HH:MM:SS" in the offset it was
// written with. Date-only values are returned unchanged; values that do not parse are
// returned as is.
func FormatTimestamp(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	if ts.IsDateOnly() {
		return string(ts)
	}
	t, err := ts.Time()
	if err != nil {
		return string(ts)
	}
	return t.Format(displayLayout)
}
