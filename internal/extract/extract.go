package extract

//go:generate mockgen -destination=mocks/mock_extractor.go -source=extract.go Extractor

import (
	"context"
	"fmt"

	"statement-distributor/internal/models"
	"statement-distributor/internal/store"
)

// Extractor pulls every record of one store whose primary date falls in a period.
// Group filtering happens afterwards, so records without a GL code are returned too.
type Extractor interface {
	Extract(ctx context.Context, period models.SubPeriod) ([]models.TransactionRecord, error)
}

// New returns the extractor for source reading from db.
func New(source models.Source, db store.Querier) (Extractor, error) {
	switch source {
	case models.SourceRamp:
		return NewRampExtractor(db), nil
	case models.SourceBill:
		return NewBillExtractor(db), nil
	default:
		return nil, fmt.Errorf("no extractor for source '%s'", source)
	}
}
