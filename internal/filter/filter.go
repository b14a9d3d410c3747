package filter

import (
	"sort"
	"strings"

	"github.com/openpermits/permitdash/internal/model"
)

// Predicates narrows a fetched result set locally. Empty constraints
// are vacuously true: a zero Predicates matches every record.
type Predicates struct {
	Types      []string `json:"types,omitempty"`
	Activities []string `json:"activities,omitempty"`
	Text       string   `json:"text,omitempty"`
}

// IsZero reports whether every constraint is empty
func (p Predicates) IsZero() bool {
	return len(p.Types) == 0 && len(p.Activities) == 0 && p.Text == ""
}

// Apply returns the records matching the conjunction of all
// predicates. The input is never mutated and its ordering is
// preserved.
func Apply(records []model.PermitRecord, p Predicates) []model.PermitRecord {
	if p.IsZero() {
		return records
	}

	types := toSet(p.Types)
	activities := toSet(p.Activities)
	text := strings.ToLower(p.Text)

	out := make([]model.PermitRecord, 0, len(records))
	for _, rec := range records {
		if len(types) > 0 && !types[rec.Type] {
			continue
		}
		if len(activities) > 0 && !activities[rec.Activity] {
			continue
		}
		if text != "" && !matchesText(rec, text) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// matchesText is a case-insensitive substring test against the
// description or the comments. A record with no comments simply
// cannot match through that field.
func matchesText(rec model.PermitRecord, lowered string) bool {
	return strings.Contains(strings.ToLower(rec.Description), lowered) ||
		strings.Contains(strings.ToLower(rec.Comments), lowered)
}

// TypeOptions returns the distinct non-empty permit types in the
// records, sorted ascending. Feeds the type picker.
func TypeOptions(records []model.PermitRecord) []string {
	return distinct(records, func(r model.PermitRecord) string { return r.Type })
}

// ActivityOptions returns the distinct non-empty activities, sorted
// ascending. Feeds the activity picker.
func ActivityOptions(records []model.PermitRecord) []string {
	return distinct(records, func(r model.PermitRecord) string { return r.Activity })
}

func distinct(records []model.PermitRecord, field func(model.PermitRecord) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		v := field(rec)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
