package extract

import (
	"context"
	"database/sql"

	"statement-distributor/internal/models"
	"statement-distributor/internal/store"
	apperrors "statement-distributor/pkg/errors"
)

const rampQuery = `
	SELECT
		t.accounting_date,
		u.first_name || ' ' || u.last_name AS user_name,
		c.display_name AS card_name,
		c.last_four,
		t.original_transaction_amount_amt,
		t.amount_amt,
		t.merchant_name,
		t.state,
		tliafs.external_code AS gl_account
	FROM transactions t
	LEFT JOIN cards c ON t.card_id = c.id
	LEFT JOIN users u ON t.card_holder_user_id = u.id
	LEFT JOIN transactions_line_items tli ON t.id = tli.transaction_id
	LEFT JOIN transactions_line_items_accounting_field_selections tliafs
		ON t.id = tliafs.transaction_id
		AND tli.index_line_item = tliafs.index_line_item
		AND tliafs.category_info_type = 'GL_ACCOUNT'
	WHERE t.accounting_date >= ? AND t.accounting_date <= ?
	ORDER BY tliafs.external_code, t.accounting_date
`

// RampExtractor reads card transactions. Accounting dates carry a time of day,
// so the period bounds are widened to the start and end of day in UTC.
type RampExtractor struct {
	db store.Querier
}

// NewRampExtractor creates a RampExtractor
func NewRampExtractor(db store.Querier) *RampExtractor {
	return &RampExtractor{db: db}
}

// Extract implements Extractor
func (e *RampExtractor) Extract(ctx context.Context, period models.SubPeriod) ([]models.TransactionRecord, error) {
	operation := "ramp extract " + period.String()
	from := period.FromDate() + "T00:00:00.000Z"
	to := period.ToDate() + "T23:59:59.999Z"

	rows, err := e.db.QueryContext(ctx, rampQuery, from, to)
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeQueryFailed, operation, err)
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var (
			accountingDate sql.NullString
			userName       sql.NullString
			cardName       sql.NullString
			lastFour       sql.NullString
			originalAmount sql.NullInt64
			settledAmount  sql.NullInt64
			merchant       sql.NullString
			state          sql.NullString
			glAccount      sql.NullString
		)
		if err := rows.Scan(&accountingDate, &userName, &cardName, &lastFour,
			&originalAmount, &settledAmount, &merchant, &state, &glAccount); err != nil {
			return nil, apperrors.ExtractionError(apperrors.CodeScanFailed, operation, err)
		}

		records = append(records, models.TransactionRecord{
			OccurredAt:       models.Timestamp(accountingDate.String),
			HolderName:       userName.String,
			CardName:         cardName.String,
			CardLastFour:     lastFour.String,
			GrossAmount:      nullCents(originalAmount),
			SettledAmount:    nullCents(settledAmount),
			CounterpartyName: merchant.String,
			Status:           state.String,
			GLAccountCode:    glAccount.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeScanFailed, operation, err)
	}

	return records, nil
}

func nullCents(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return models.Cents(v.Int64)
}
