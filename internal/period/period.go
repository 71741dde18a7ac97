package period

import (
	"time"

	"statement-distributor/internal/models"
	apperrors "statement-distributor/pkg/errors"
)

// LastDayOfMonth returns the last calendar day of t's month.
func LastDayOfMonth(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), 28, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 4)
	return next.AddDate(0, 0, -next.Day())
}

// FirstDayOfPreviousMonth returns the first day of the month before now's month.
func FirstDayOfPreviousMonth(now time.Time) time.Time {
	firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfThis.AddDate(0, -1, 0)
}

// ResolveDates resolves an optional YYYY-MM-DD pair into one period.
// A missing from date means the first day of the previous month; a missing to date
// means the last day of the from date's month.
func ResolveDates(fromDate, toDate string, now time.Time) (models.SubPeriod, error) {
	var from time.Time
	if fromDate != "" {
		parsed, err := time.Parse(models.DateLayout, fromDate)
		if err != nil {
			return models.SubPeriod{}, apperrors.ConfigError(apperrors.CodeInvalidDate, "from date", fromDate, err)
		}
		from = parsed
	} else {
		from = FirstDayOfPreviousMonth(now)
	}

	var to time.Time
	if toDate != "" {
		parsed, err := time.Parse(models.DateLayout, toDate)
		if err != nil {
			return models.SubPeriod{}, apperrors.ConfigError(apperrors.CodeInvalidDate, "to date", toDate, err)
		}
		to = parsed
	} else {
		to = LastDayOfMonth(from)
	}

	p, err := models.NewSubPeriod(from, to)
	if err != nil {
		return models.SubPeriod{}, apperrors.ConfigError(apperrors.CodeInvalidDate, "date range", fromDate+".."+toDate, err)
	}
	return p, nil
}

// ResolveMonths resolves an optional YYYY-MM pair into one period per calendar month.
// A missing from month means the previous month; a missing to month means the from month.
func ResolveMonths(fromMonth, toMonth string, now time.Time) ([]models.SubPeriod, error) {
	var from time.Time
	if fromMonth != "" {
		parsed, err := time.Parse(models.MonthLayout, fromMonth)
		if err != nil {
			return nil, apperrors.ConfigError(apperrors.CodeInvalidDate, "from month", fromMonth, err)
		}
		from = parsed
	} else {
		from = FirstDayOfPreviousMonth(now)
	}

	to := from
	if toMonth != "" {
		parsed, err := time.Parse(models.MonthLayout, toMonth)
		if err != nil {
			return nil, apperrors.ConfigError(apperrors.CodeInvalidDate, "to month", toMonth, err)
		}
		to = parsed
	}

	if from.After(to) {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidDate, "month range",
			from.Format(models.MonthLayout)+".."+to.Format(models.MonthLayout), nil)
	}

	var periods []models.SubPeriod
	for month := from; !month.After(to); month = month.AddDate(0, 1, 0) {
		periods = append(periods, models.SubPeriod{From: month, To: LastDayOfMonth(month)})
	}
	return periods, nil
}
