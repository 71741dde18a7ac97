package groups

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"statement-distributor/internal/models"
	apperrors "statement-distributor/pkg/errors"
	"statement-distributor/pkg/logger"
)

// excluded groups are roll-ups that never receive their own statement
var excluded = map[string]bool{"All": true, "Other": true}

type rawGroup struct {
	Name   string                `json:"groupName"`
	Type   string                `json:"groupType"`
	Email  string                `json:"groupEmail"`
	Ranges []models.AccountRange `json:"groupRanges"`
}

// Load reads the account group reference file.
func Load(path string) ([]models.AccountGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeReferenceData, path, nil, err)
	}
	return Parse(data, path)
}

// Parse decodes account group reference data. source names the data in errors.
func Parse(data []byte, source string) ([]models.AccountGroup, error) {
	var raw []rawGroup
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeReferenceData, source, nil, err)
	}

	seen := make(map[string]bool, len(raw))
	var problems apperrors.MultiError
	result := make([]models.AccountGroup, 0, len(raw))

	for i, g := range raw {
		groupType, err := models.ParseGroupType(g.Type)
		if err != nil {
			problems = append(problems, fmt.Errorf("entry %d (%s): %w", i, g.Name, err))
			continue
		}
		if g.Name != "" {
			if seen[g.Name] {
				problems = append(problems, fmt.Errorf("duplicate group name '%s'", g.Name))
				continue
			}
			seen[g.Name] = true
		}
		result = append(result, models.AccountGroup{
			Name:         g.Name,
			Type:         groupType,
			ContactEmail: strings.TrimSpace(g.Email),
			Ranges:       g.Ranges,
		})
	}

	if err := problems.ErrOrNil(); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeReferenceData, source, nil, err)
	}
	return result, nil
}

// Candidates returns the departmental groups that receive statements, in file order.
// Groups without an email are kept so the run records them as failed.
func Candidates(all []models.AccountGroup) ([]models.AccountGroup, error) {
	var result []models.AccountGroup
	for _, g := range all {
		if g.Type == models.GroupTypeDepartmental && !excluded[g.Name] {
			result = append(result, g)
		}
	}
	if len(result) == 0 {
		return nil, apperrors.ConfigError(apperrors.CodeReferenceData, "account groups", nil,
			fmt.Errorf("no departmental account groups configured"))
	}
	return result, nil
}

// Select applies a comma separated, case-insensitive name filter.
// An empty filter selects everything. Unknown names are logged and ignored.
func Select(candidates []models.AccountGroup, filter string, log logger.Logger) ([]models.AccountGroup, error) {
	if strings.TrimSpace(filter) == "" {
		return candidates, nil
	}

	lookup := make(map[string]models.AccountGroup, len(candidates))
	for _, g := range candidates {
		lookup[strings.ToLower(g.Name)] = g
	}

	var selected []models.AccountGroup
	chosen := make(map[string]bool)
	for _, name := range strings.Split(filter, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		g, ok := lookup[key]
		if !ok {
			log.WithField("requested", name).
				Warnf("Account group '%s' not found. Available account groups: %s", name, strings.Join(Names(candidates), ", "))
			continue
		}
		if chosen[key] {
			continue
		}
		chosen[key] = true
		selected = append(selected, g)
	}

	if len(selected) == 0 {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig, "account groups", filter,
			fmt.Errorf("no valid account groups matched the filter"))
	}
	return selected, nil
}

// Names returns group names in the given order
func Names(groups []models.AccountGroup) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

// List writes the groups alphabetically with a count.
func List(w io.Writer, groups []models.AccountGroup) error {
	sorted := make([]models.AccountGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if _, err := fmt.Fprintf(w, "Available account groups (%d):\n", len(sorted)); err != nil {
		return err
	}
	for _, g := range sorted {
		line := "  " + g.Name
		if !g.HasContact() {
			line += " (no email configured)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
