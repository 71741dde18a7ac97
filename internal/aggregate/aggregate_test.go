package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"statement-distributor/internal/models"
)

func month(m time.Month) models.SubPeriod {
	from := time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC)
	return models.SubPeriod{From: from, To: from.AddDate(0, 1, -1)}
}

func rec(gl, at, name string) models.TransactionRecord {
	return models.TransactionRecord{GLAccountCode: gl, OccurredAt: models.Timestamp(at), CounterpartyName: name}
}

func names(records []models.TransactionRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.CounterpartyName)
	}
	return out
}

func TestMergeSinglePeriodPassesThrough(t *testing.T) {
	records := []models.TransactionRecord{
		rec("6999", "2024-01-20T00:00:00Z", "b"),
		rec("6000", "2024-01-10T00:00:00Z", "a"),
	}

	got := Merge([]PeriodResult{{Period: month(time.January), Records: records}})
	assert.Equal(t, []string{"b", "a"}, names(got))

	got[0].CounterpartyName = "changed"
	assert.Equal(t, "b", records[0].CounterpartyName, "merge must not alias the input")
}

func TestMergeMultiplePeriods(t *testing.T) {
	jan := PeriodResult{Period: month(time.January), Records: []models.TransactionRecord{
		rec("6450", "2024-01-15T10:00:00Z", "jan-6450"),
		rec("6100", "2024-01-20T10:00:00Z", "jan-6100"),
	}}
	feb := PeriodResult{Period: month(time.February), Records: []models.TransactionRecord{
		rec("6100", "2024-02-03T10:00:00Z", "feb-6100"),
		rec("", "2024-02-04T10:00:00Z", "feb-none"),
	}}
	mar := PeriodResult{Period: month(time.March), Records: []models.TransactionRecord{
		rec("6450", "2024-03-01T09:00:00Z", "mar-6450"),
	}}

	want := []string{"feb-none", "jan-6100", "feb-6100", "jan-6450", "mar-6450"}

	assert.Equal(t, want, names(Merge([]PeriodResult{jan, feb, mar})))
	assert.Equal(t, want, names(Merge([]PeriodResult{mar, jan, feb})), "input period order must not matter")
}

func TestMergeOrdersByInstantAcrossOffsets(t *testing.T) {
	got := Merge([]PeriodResult{
		{Records: []models.TransactionRecord{rec("6000", "2024-01-15T09:00:00-05:00", "later")}},
		{Records: []models.TransactionRecord{rec("6000", "2024-01-15T10:00:00Z", "earlier")}},
	})
	assert.Equal(t, []string{"earlier", "later"}, names(got))
}

func TestMergeUnparseableTimesSortFirst(t *testing.T) {
	got := Merge([]PeriodResult{
		{Records: []models.TransactionRecord{rec("6000", "2024-01-01", "dated")}},
		{Records: []models.TransactionRecord{rec("6000", "", "blank"), rec("6000", "unknown", "garbled")}},
	})
	assert.Equal(t, []string{"blank", "garbled", "dated"}, names(got))
}

func TestMergeStableForEqualKeys(t *testing.T) {
	got := Merge([]PeriodResult{
		{Records: []models.TransactionRecord{rec("6000", "2024-01-01", "first")}},
		{Records: []models.TransactionRecord{rec("6000", "2024-01-01", "second")}},
	})
	assert.Equal(t, []string{"first", "second"}, names(got))
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([]PeriodResult{{Period: month(time.January)}, {Period: month(time.February)}}))
}
