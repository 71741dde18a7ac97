package groups

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement-distributor/internal/models"
	apperrors "statement-distributor/pkg/errors"
	"statement-distributor/pkg/logger"
)

const sampleGroups = `[
  {"groupName": "All", "groupType": "Departmental", "groupEmail": "all@example.org", "groupRanges": [{"start": "0000", "end": "9999"}]},
  {"groupName": "Infrastructure", "groupType": "Departmental", "groupEmail": "infra@example.org", "groupRanges": [{"start": "6000", "end": "6999"}]},
  {"groupName": "Brand", "groupType": "Departmental", "groupRanges": [{"start": "7100", "end": "7199"}]},
  {"groupName": "Travel", "groupType": "Special", "groupEmail": "travel@example.org", "groupRanges": [{"start": "7500", "end": "7599"}]},
  {"groupName": "Revenue", "groupType": "GeneralLedger", "groupRanges": [{"start": "4000", "end": "4999"}]},
  {"groupName": "Other", "groupType": "Departmental", "groupEmail": "other@example.org", "groupRanges": []}
]`

func writeGroups(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "AccountGroups.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	all, err := Load(writeGroups(t, sampleGroups))
	require.NoError(t, err)
	require.Len(t, all, 6)

	assert.Equal(t, "Infrastructure", all[1].Name)
	assert.Equal(t, models.GroupTypeDepartmental, all[1].Type)
	assert.Equal(t, "infra@example.org", all[1].ContactEmail)
	assert.Equal(t, []models.AccountRange{{Start: "6000", End: "6999"}}, all[1].Ranges)
	assert.Equal(t, models.GroupTypeSpecial, all[4].Type)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `[{"groupName": `},
		{"unknown type", `[{"groupName": "X", "groupType": "Team", "groupRanges": []}]`},
		{"duplicate name", `[{"groupName": "X", "groupType": "Special"}, {"groupName": "X", "groupType": "Departmental"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeGroups(t, tt.content))
			require.Error(t, err)
			assert.True(t, apperrors.HasCategory(err, apperrors.CategoryConfiguration))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.True(t, apperrors.HasCategory(err, apperrors.CategoryConfiguration))
	})
}

func TestCandidates(t *testing.T) {
	all, err := Parse([]byte(sampleGroups), "sample")
	require.NoError(t, err)

	got, err := Candidates(all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Infrastructure", "Brand"}, Names(got))

	_, err = Candidates([]models.AccountGroup{{Name: "Travel", Type: models.GroupTypeSpecial}})
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	candidates := []models.AccountGroup{
		{Name: "Infrastructure", Type: models.GroupTypeDepartmental},
		{Name: "Brand", Type: models.GroupTypeDepartmental},
		{Name: "Conferences", Type: models.GroupTypeDepartmental},
	}

	tests := []struct {
		name     string
		filter   string
		want     []string
		wantWarn bool
		wantErr  bool
	}{
		{"empty filter selects all", "", []string{"Infrastructure", "Brand", "Conferences"}, false, false},
		{"case insensitive", "brand, INFRASTRUCTURE", []string{"Brand", "Infrastructure"}, false, false},
		{"duplicates collapse", "Brand,brand", []string{"Brand"}, false, false},
		{"unknown name warns", "Brand,Marketing", []string{"Brand"}, true, false},
		{"no match", "Marketing", nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got, err := Select(candidates, tt.filter, logger.NewWriterLogger(&buf, "info"))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCategory(err, apperrors.CategoryConfiguration))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, Names(got))
			}
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("Available account groups")))
		})
	}
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	err := List(&buf, []models.AccountGroup{
		{Name: "Infrastructure", ContactEmail: "infra@example.org"},
		{Name: "Brand"},
	})
	require.NoError(t, err)

	expected := "Available account groups (2):\n  Brand (no email configured)\n  Infrastructure\n"
	assert.Equal(t, expected, buf.String())
}
