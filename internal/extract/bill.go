package extract

import (
	"context"
	"database/sql"

	"statement-distributor/internal/models"
	"statement-distributor/internal/store"
	apperrors "statement-distributor/pkg/errors"
)

const billQuery = `
	SELECT
		b.invoiceDate,
		COALESCE(v.name, b.vendorName) AS vendor_name,
		b.invoiceNumber,
		b.dueDate,
		b.amount,
		b.paidAmount,
		b.paymentStatus,
		b.approvalStatus,
		a.accountNumber AS gl_account,
		a.name AS gl_account_name
	FROM bills b
	LEFT JOIN vendors v ON b.vendorId = v.id
	LEFT JOIN bills_classifications bc ON b.id = bc.billId
	LEFT JOIN accounts a ON bc.chartOfAccountId = a.id
	WHERE b.invoiceDate >= ? AND b.invoiceDate <= ?
	ORDER BY a.accountNumber, b.invoiceDate
`

// BillExtractor reads vendor bills. Invoice dates are plain dates and amounts
// are stored in dollars.
type BillExtractor struct {
	db store.Querier
}

// NewBillExtractor creates a BillExtractor
func NewBillExtractor(db store.Querier) *BillExtractor {
	return &BillExtractor{db: db}
}

// Extract implements Extractor
func (e *BillExtractor) Extract(ctx context.Context, period models.SubPeriod) ([]models.TransactionRecord, error) {
	operation := "bill extract " + period.String()

	rows, err := e.db.QueryContext(ctx, billQuery, period.FromDate(), period.ToDate())
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeQueryFailed, operation, err)
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var (
			invoiceDate    sql.NullString
			vendorName     sql.NullString
			invoiceNumber  sql.NullString
			dueDate        sql.NullString
			amount         sql.NullFloat64
			paidAmount     sql.NullFloat64
			paymentStatus  sql.NullString
			approvalStatus sql.NullString
			glAccount      sql.NullString
			glAccountName  sql.NullString
		)
		if err := rows.Scan(&invoiceDate, &vendorName, &invoiceNumber, &dueDate, &amount, &paidAmount,
			&paymentStatus, &approvalStatus, &glAccount, &glAccountName); err != nil {
			return nil, apperrors.ExtractionError(apperrors.CodeScanFailed, operation, err)
		}

		records = append(records, models.TransactionRecord{
			OccurredAt:       models.Timestamp(invoiceDate.String),
			CounterpartyName: vendorName.String,
			ReferenceNumber:  invoiceNumber.String,
			DueAt:            models.Timestamp(dueDate.String),
			GrossAmount:      dollarsToCents(amount),
			SettledAmount:    dollarsToCents(paidAmount),
			Status:           paymentStatus.String,
			ApprovalState:    approvalStatus.String,
			GLAccountCode:    glAccount.String,
			GLAccountName:    glAccountName.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeScanFailed, operation, err)
	}

	return records, nil
}

func dollarsToCents(v sql.NullFloat64) *int64 {
	if !v.Valid {
		return nil
	}
	return models.Cents(models.CentsFromDollars(v.Float64))
}
