package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout used for every date the distributor reads or prints
const DateLayout = "2006-01-02"

// MonthLayout is the layout for month arguments
const MonthLayout = "2006-01"

// Source identifies the upstream system a store was exported from
type Source string

const (
	// SourceRamp is the card transaction export
	SourceRamp Source = "ramp"
	// SourceBill is the vendor bill export
	SourceBill Source = "bill"
)

// String returns the string representation of Source
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is one the distributor can read
func (s Source) IsValid() bool {
	return s == SourceRamp || s == SourceBill
}

// FilePrefix is the leading part of every statement file name for the source.
func (s Source) FilePrefix() string {
	switch s {
	case SourceBill:
		return "Bill"
	default:
		return "Ramp"
	}
}

// Title is the display name used in the run summary.
func (s Source) Title() string {
	switch s {
	case SourceBill:
		return "Bill.com"
	default:
		return "Ramp"
	}
}

// ParseSource parses and validates a source name
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.IsValid() {
		return "", fmt.Errorf("invalid source '%s': must be ramp or bill", s)
	}
	return src, nil
}

// GroupType classifies an account group
type GroupType string

const (
	GroupTypeDepartmental GroupType = "Departmental"
	GroupTypeSpecial      GroupType = "Special"
)

// ParseGroupType maps the reference data spelling to a GroupType.
// GeneralLedger groups are roll-ups and are handled like Special ones.
func ParseGroupType(s string) (GroupType, error) {
	switch strings.TrimSpace(s) {
	case "Departmental":
		return GroupTypeDepartmental, nil
	case "Special", "GeneralLedger":
		return GroupTypeSpecial, nil
	default:
		return "", fmt.Errorf("invalid group type '%s': must be Departmental, Special or GeneralLedger", s)
	}
}

// AccountRange is an inclusive range of GL account codes
type AccountRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AccountGroup is a named set of GL ranges that receives its own statement
type AccountGroup struct {
	Name         string         `json:"groupName"`
	Type         GroupType      `json:"groupType"`
	ContactEmail string         `json:"groupEmail,omitempty"`
	Ranges       []AccountRange `json:"groupRanges"`
}

// HasContact reports whether the group has somewhere to send its statement
func (g AccountGroup) HasContact() bool {
	return strings.TrimSpace(g.ContactEmail) != ""
}

// IsDistributable reports whether the group has both an identifier and a contact.
func (g AccountGroup) IsDistributable() bool {
	return strings.TrimSpace(g.Name) != "" && g.HasContact()
}

// String returns a string representation of the AccountGroup
func (g AccountGroup) String() string {
	return fmt.Sprintf("AccountGroup{Name: %s, Type: %s, Ranges: %d}", g.Name, g.Type, len(g.Ranges))
}

// Timestamp is a timestamp exactly as the store returned it.
// It is kept as text so date-only values survive untouched.
type Timestamp string

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// IsZero reports whether the store had no value
func (ts Timestamp) IsZero() bool {
	return strings.TrimSpace(string(ts)) == ""
}

// IsDateOnly reports whether the value is a plain YYYY-MM-DD date
func (ts Timestamp) IsDateOnly() bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(string(ts)))
	return err == nil
}

// Time parses the value keeping the offset it was written with.
// Date-only values parse as midnight UTC.
func (ts Timestamp) Time() (time.Time, error) {
	s := strings.TrimSpace(string(ts))
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp '%s'", s)
}

// TransactionRecord is one extracted row, normalised across sources.
// Amounts are in cents. Fields a source does not have stay empty.
type TransactionRecord struct {
	OccurredAt       Timestamp `json:"occurredAt"`
	CounterpartyName string    `json:"counterpartyName,omitempty"`
	ReferenceNumber  string    `json:"referenceNumber,omitempty"`
	DueAt            Timestamp `json:"dueAt,omitempty"`
	GrossAmount      *int64    `json:"grossAmount,omitempty"`
	SettledAmount    *int64    `json:"settledAmount,omitempty"`
	Status           string    `json:"status,omitempty"`
	ApprovalState    string    `json:"approvalState,omitempty"`
	GLAccountCode    string    `json:"glAccountCode,omitempty"`
	GLAccountName    string    `json:"glAccountName,omitempty"`

	// Card transaction fields
	HolderName   string `json:"holderName,omitempty"`
	CardName     string `json:"cardName,omitempty"`
	CardLastFour string `json:"cardLastFour,omitempty"`
}

// String returns a string representation of the TransactionRecord
func (r TransactionRecord) String() string {
	return fmt.Sprintf("TransactionRecord{At: %s, Counterparty: %s, GL: %s}",
		r.OccurredAt, r.CounterpartyName, r.GLAccountCode)
}

// Cents returns a pointer to v, for building records in code
func Cents(v int64) *int64 {
	return &v
}

// CentsFromDollars converts a dollar amount to cents, rounding half away from zero.
func CentsFromDollars(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Shift(2).Round(0).IntPart()
}

// SubPeriod is an inclusive date interval queried as one unit
type SubPeriod struct {
	From time.Time
	To   time.Time
}

// NewSubPeriod builds a SubPeriod, rejecting inverted bounds
func NewSubPeriod(from, to time.Time) (SubPeriod, error) {
	if from.After(to) {
		return SubPeriod{}, fmt.Errorf("from date %s is after to date %s", from.Format(DateLayout), to.Format(DateLayout))
	}
	return SubPeriod{From: from, To: to}, nil
}

// FromDate returns the start date as YYYY-MM-DD
func (p SubPeriod) FromDate() string {
	return p.From.Format(DateLayout)
}

// ToDate returns the end date as YYYY-MM-DD
func (p SubPeriod) ToDate() string {
	return p.To.Format(DateLayout)
}

// String returns a string representation of the SubPeriod
func (p SubPeriod) String() string {
	return fmt.Sprintf("%s to %s", p.FromDate(), p.ToDate())
}

// MarshalJSON writes the period as a pair of dates
func (p SubPeriod) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		From string `json:"from"`
		To   string `json:"to"`
	}{p.FromDate(), p.ToDate()})
}

// Span returns the period from the first period's start to the last period's end.
func Span(periods []SubPeriod) SubPeriod {
	if len(periods) == 0 {
		return SubPeriod{}
	}
	return SubPeriod{From: periods[0].From, To: periods[len(periods)-1].To}
}
