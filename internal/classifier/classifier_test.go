package classifier

import (
	"testing"

	"statement-distributor/internal/models"
)

func TestIsInGroup(t *testing.T) {
	infrastructure := models.AccountGroup{
		Name:   "Infrastructure",
		Type:   models.GroupTypeDepartmental,
		Ranges: []models.AccountRange{{Start: "6000", End: "6999"}},
	}
	split := models.AccountGroup{
		Name: "Fundraising",
		Ranges: []models.AccountRange{
			{Start: "8500", End: "8599"},
			{Start: "4100", End: "4199"},
		},
	}
	empty := models.AccountGroup{Name: "Nothing"}

	tests := []struct {
		name  string
		code  string
		group models.AccountGroup
		want  bool
	}{
		{"inside range", "6450", infrastructure, true},
		{"lower bound inclusive", "6000", infrastructure, true},
		{"upper bound inclusive", "6999", infrastructure, true},
		{"above range", "7000", infrastructure, false},
		{"empty code", "", infrastructure, false},
		{"second range matches", "4150", split, true},
		{"between ranges", "5000", split, false},
		{"no ranges", "6450", empty, false},
		// string ordering, not numeric
		{"shorter code sorts inside", "65", infrastructure, true},
		{"shorter code sorts after", "700", infrastructure, false},
		{"suffixed code", "6450-01", infrastructure, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInGroup(tt.code, tt.group); got != tt.want {
				t.Errorf("IsInGroup(%q, %s) = %v, want %v", tt.code, tt.group.Name, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	group := models.AccountGroup{
		Name:   "Infrastructure",
		Ranges: []models.AccountRange{{Start: "6000", End: "6999"}},
	}
	records := []models.TransactionRecord{
		{GLAccountCode: "6450", CounterpartyName: "Hetzner"},
		{GLAccountCode: "7000", CounterpartyName: "Travel"},
		{GLAccountCode: "", CounterpartyName: "Unclassified"},
		{GLAccountCode: "6001", CounterpartyName: "OSUOSL"},
	}

	got := Filter(records, group)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].CounterpartyName != "Hetzner" || got[1].CounterpartyName != "OSUOSL" {
		t.Errorf("unexpected order: %v", got)
	}
	if len(records) != 4 || records[1].CounterpartyName != "Travel" {
		t.Error("input slice was modified")
	}

	if got := Filter(nil, group); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
