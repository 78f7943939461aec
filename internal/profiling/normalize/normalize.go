// Package normalize converts the in-memory profiling record into the exact
// payload shape the ingestion endpoint accepts: empty values stripped,
// date-like fields canonicalized, stray typographic punctuation removed.
//
// The transform is idempotent: every rule either removes a value or rewrites
// it into a form that already satisfies the rule's own acceptance test, so
// Normalize(Normalize(x)) == Normalize(x).
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"offsite/internal/profiling/models"
)

// calendarDateRe is the only date form allowed through to the backend.
var calendarDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// smartQuotes are typographic quotation characters pasted in from word
// processors; they are stripped from every string value.
var smartQuotes = strings.NewReplacer(
	"‘", "", // ‘
	"’", "", // ’
	"‚", "", // ‚
	"‛", "", // ‛
	"“", "", // “
	"”", "", // ”
	"„", "", // „
	"‟", "", // ‟
)

// unicodeDashes folds hyphen-like code points to the ASCII hyphen so pasted
// dates like "2024–05–01" survive the calendar-date check.
var unicodeDashes = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
)

// isDateKey reports whether a key names a date-like field: "start", "end",
// or anything containing "date" or "period" in any casing.
func isDateKey(key string) bool {
	if key == "start" || key == "end" {
		return true
	}
	lk := strings.ToLower(key)
	return strings.Contains(lk, "date") || strings.Contains(lk, "period")
}

// cleanString strips smart quotes and trims surrounding whitespace.
func cleanString(s string) string {
	return strings.TrimSpace(smartQuotes.Replace(s))
}

// canonicalDate cleans a date-like value and reports whether the result is an
// acceptable calendar date. Malformed dates are dropped, never passed through.
func canonicalDate(s string) (string, bool) {
	s = strings.TrimSpace(unicodeDashes.Replace(smartQuotes.Replace(s)))
	if !calendarDateRe.MatchString(s) {
		return "", false
	}
	return s, true
}

// Normalize recursively rewrites a decoded JSON value into its backend-safe
// form. Maps and slices are rebuilt, scalars other than strings pass through
// unchanged.
func Normalize(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for key, val := range node {
			switch inner := val.(type) {
			case string:
				if inner == "" {
					continue
				}
				if isDateKey(key) {
					if date, ok := canonicalDate(inner); ok {
						out[key] = date
					}
					continue
				}
				if cleaned := cleanString(inner); cleaned != "" {
					out[key] = cleaned
				}
			case map[string]any:
				if sub := Normalize(inner).(map[string]any); len(sub) > 0 {
					out[key] = sub
				}
			case []any:
				if sub := Normalize(inner).([]any); len(sub) > 0 {
					out[key] = sub
				}
			case nil:
				// JSON null carries no information for the backend.
			default:
				out[key] = inner
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(node))
		for _, el := range node {
			switch inner := el.(type) {
			case nil:
				// skip
			case string:
				if cleaned := cleanString(inner); cleaned != "" {
					out = append(out, cleaned)
				}
			case map[string]any:
				if sub := Normalize(inner).(map[string]any); len(sub) > 0 {
					out = append(out, sub)
				}
			case []any:
				if sub := Normalize(inner).([]any); len(sub) > 0 {
					out = append(out, sub)
				}
			default:
				out = append(out, inner)
			}
		}
		return out
	default:
		return v
	}
}

// Payload converts a profiling record into the normalized wire payload the
// ingestion endpoint accepts.
func Payload(r *models.ProfilingRecord) (map[string]any, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return Normalize(tree).(map[string]any), nil
}
