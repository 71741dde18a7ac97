// Command seed fills a local SQLite database with synthetic card
// transactions or bills so dry runs can be tried without production data.
//
//	go run ./cmd/seed -source ramp -database ./demo/ramp.db -count 200
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"statement-distributor/internal/models"
	"statement-distributor/internal/store"
)

// GLAccount is a chart of accounts entry records are booked to
type GLAccount struct {
	Code string
	Name string
}

var defaultAccounts = []GLAccount{
	{"6100", "Software Subscriptions"},
	{"6450", "Hosting"},
	{"6700", "Conferences"},
	{"7120", "Brand Design"},
	{"7510", "Travel"},
	{"8010", "Legal Fees"},
}

var counterparties = []string{"Hetzner", "Amazon Web Services", "GitHub", "Delta Air Lines", "Acme Legal LLP", "Print Shop"}

// SeedGenerator generates records for one source
type SeedGenerator struct {
	Source    models.Source
	Count     int
	StartDate time.Time
	EndDate   time.Time
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	Seed      int64
	Accounts  []GLAccount
}

// RecordTemplate represents one generated record
type RecordTemplate struct {
	ID           string
	OccurredAt   time.Time
	Amount       decimal.Decimal
	Counterparty string
	Account      GLAccount
	Settled      bool
}

func main() {
	var (
		source    = flag.String("source", "ramp", "statement source: ramp, bill")
		database  = flag.String("database", "demo.db", "SQLite file to create or extend")
		count     = flag.Int("count", 100, "number of records to generate")
		startDate = flag.String("start-date", "2024-01-01", "start date (YYYY-MM-DD)")
		endDate   = flag.String("end-date", "2024-03-31", "end date (YYYY-MM-DD)")
		minAmount = flag.Float64("min-amount", 1.00, "minimum amount in dollars")
		maxAmount = flag.Float64("max-amount", 5000.00, "maximum amount in dollars")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed for reproducible generation")
		pattern   = flag.String("pattern", "random", "generation pattern: random, end-of-month")
	)
	flag.Parse()

	src, err := models.ParseSource(*source)
	if err != nil {
		log.Fatalf("Invalid source: %v", err)
	}
	start, err := time.Parse(models.DateLayout, *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	end, err := time.Parse(models.DateLayout, *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}

	generator := &SeedGenerator{
		Source:    src,
		Count:     *count,
		StartDate: start,
		EndDate:   end,
		MinAmount: decimal.NewFromFloat(*minAmount),
		MaxAmount: decimal.NewFromFloat(*maxAmount),
		Seed:      *seed,
		Accounts:  defaultAccounts,
	}

	var records []RecordTemplate
	switch *pattern {
	case "end-of-month":
		records = generator.GenerateEndOfMonth()
	default:
		records = generator.GenerateRandom()
	}

	if err := generator.WriteToStore(*database, records); err != nil {
		log.Fatalf("Failed to write database: %v", err)
	}

	fmt.Printf("Generated %d %s records in %s\n", len(records), src, *database)
	fmt.Printf("Date range: %s to %s\n", *startDate, *endDate)
	fmt.Printf("Seed used: %d\n", *seed)
}

// GenerateRandom spreads records evenly across the date range
func (g *SeedGenerator) GenerateRandom() []RecordTemplate {
	rng := rand.New(rand.NewSource(g.Seed))
	duration := g.EndDate.AddDate(0, 0, 1).Sub(g.StartDate)

	records := make([]RecordTemplate, g.Count)
	for i := range records {
		at := g.StartDate.Add(time.Duration(rng.Int63n(int64(duration))))
		records[i] = g.record(rng, i, at)
	}
	return records
}

// GenerateEndOfMonth concentrates records in the last five days of each month
func (g *SeedGenerator) GenerateEndOfMonth() []RecordTemplate {
	rng := rand.New(rand.NewSource(g.Seed))

	var days []time.Time
	for month := time.Date(g.StartDate.Year(), g.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(g.EndDate); month = month.AddDate(0, 1, 0) {
		last := month.AddDate(0, 1, -1)
		for d := last.AddDate(0, 0, -4); !d.After(last); d = d.AddDate(0, 0, 1) {
			if !d.Before(g.StartDate) && !d.After(g.EndDate) {
				days = append(days, d)
			}
		}
	}
	if len(days) == 0 {
		return g.GenerateRandom()
	}

	records := make([]RecordTemplate, g.Count)
	for i := range records {
		day := days[rng.Intn(len(days))]
		at := day.Add(time.Duration(rng.Intn(24*60*60)) * time.Second)
		records[i] = g.record(rng, i, at)
	}
	return records
}

func (g *SeedGenerator) record(rng *rand.Rand, i int, at time.Time) RecordTemplate {
	amountRange := g.MaxAmount.Sub(g.MinAmount)
	amount := decimal.NewFromFloat(rng.Float64()).Mul(amountRange).Add(g.MinAmount).Round(2)

	return RecordTemplate{
		ID:           fmt.Sprintf("%s-%06d", g.Source, i+1),
		OccurredAt:   at.UTC(),
		Amount:       amount,
		Counterparty: counterparties[rng.Intn(len(counterparties))],
		Account:      g.Accounts[rng.Intn(len(g.Accounts))],
		Settled:      rng.Float64() < 0.8,
	}
}

// WriteToStore creates the source schema in path and inserts records
func (g *SeedGenerator) WriteToStore(path string, records []RecordTemplate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := store.InitSchema(path, g.Source); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if g.Source == models.SourceBill {
		err = g.writeBills(tx, records)
	} else {
		err = g.writeTransactions(tx, records)
	}
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (g *SeedGenerator) writeTransactions(tx *sql.Tx, records []RecordTemplate) error {
	statements := []string{
		`INSERT OR IGNORE INTO users (id, first_name, last_name) VALUES ('demo-user', 'Demo', 'Cardholder')`,
		`INSERT OR IGNORE INTO cards (id, display_name, last_four, card_holder_user_id) VALUES ('demo-card', 'Demo Card', '4242', 'demo-user')`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	for _, r := range records {
		cents := r.Amount.Shift(2).IntPart()
		state := "PENDING"
		if r.Settled {
			state = "CLEARED"
		}
		if _, err := tx.Exec(`INSERT INTO transactions VALUES (?, ?, 'demo-card', 'demo-user', ?, 'USD', ?, 'USD', ?, ?)`,
			r.ID, r.OccurredAt.Format("2006-01-02T15:04:05.000Z"), cents, cents, r.Counterparty, state); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO transactions_line_items VALUES (?, 0, ?)`, r.ID, cents); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO transactions_line_items_accounting_field_selections VALUES (?, 0, 'GL_ACCOUNT', ?, ?)`,
			r.ID, r.Account.Code, r.Account.Name); err != nil {
			return err
		}
	}
	return nil
}

func (g *SeedGenerator) writeBills(tx *sql.Tx, records []RecordTemplate) error {
	for _, a := range g.Accounts {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO accounts VALUES (?, ?, ?)`, "acct-"+a.Code, a.Code, a.Name); err != nil {
			return err
		}
	}

	for i, r := range records {
		vendorID := fmt.Sprintf("vendor-%d", i%len(counterparties))
		if _, err := tx.Exec(`INSERT OR IGNORE INTO vendors VALUES (?, ?)`, vendorID, r.Counterparty); err != nil {
			return err
		}

		amount, _ := r.Amount.Float64()
		var paid interface{}
		status := "UNPAID"
		if r.Settled {
			paid = amount
			status = "PAID"
		}
		if _, err := tx.Exec(`INSERT INTO bills VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'APPROVED')`,
			r.ID, vendorID, r.Counterparty, fmt.Sprintf("INV-%06d", i+1),
			r.OccurredAt.Format(models.DateLayout), r.OccurredAt.AddDate(0, 0, 30).Format(models.DateLayout),
			amount, paid, status); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO bills_classifications VALUES (?, ?)`, r.ID, "acct-"+r.Account.Code); err != nil {
			return err
		}
	}
	return nil
}
