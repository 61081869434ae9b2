package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Kind identifies one of the three catalogue sections.
type Kind string

// Catalogue kinds. Artifact files and tool names are derived from these.
const (
	KindHotels      Kind = "hotels"
	KindFlights     Kind = "flights"
	KindExperiences Kind = "experiences"
)

// Kinds lists all catalogue kinds in build order.
func Kinds() []Kind {
	return []Kind{KindHotels, KindFlights, KindExperiences}
}

// rowIDKey stores the positional identifier assigned at index build time.
const rowIDKey = "__id"

// Row is one catalogue record: an opaque field map that always carries "city".
// Rows are immutable after index build; treat lookups as read-only.
type Row map[string]any

// City returns the row's city field, or "" when absent.
func (r Row) City() string {
	s, _ := r["city"].(string)
	return s
}

// ID returns the positional identifier assigned at build time.
func (r Row) ID() (int, bool) {
	switch v := r[rowIDKey].(type) {
	case int:
		return v, true
	case float64:
		// JSON round-trips numbers as float64.
		return int(v), true
	default:
		return 0, false
	}
}

// Clone returns a shallow copy of the row. Callers that need to annotate a
// catalogue row must clone it first; the stored maps are shared across requests.
func (r Row) Clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// WithID returns a copy of the row carrying the given positional identifier.
func (r Row) WithID(id int) Row {
	out := r.Clone()
	out[rowIDKey] = id
	return out
}

// String returns the named field as a string, or "" when absent or non-string.
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Flatten converts the row into a single text line for embedding: all non-empty
// scalar values space-joined in sorted key order, array elements joined in place.
// Sorted order keeps build artifacts deterministic across processes.
func (r Row) Flatten() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		if k == rowIDKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = appendScalar(parts, r[k])
	}
	return strings.Join(parts, " ")
}

func appendScalar(parts []string, v any) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			parts = append(parts, t)
		}
	case bool:
		parts = append(parts, strconv.FormatBool(t))
	case int:
		parts = append(parts, strconv.Itoa(t))
	case float64:
		parts = append(parts, strconv.FormatFloat(t, 'g', -1, 64))
	case []any:
		for _, e := range t {
			parts = appendScalar(parts, e)
		}
	case []string:
		for _, e := range t {
			if e != "" {
				parts = append(parts, e)
			}
		}
	}
	return parts
}

// EqualCity reports whether the row's city matches city case-insensitively.
// An empty city matches everything (no filter).
func (r Row) EqualCity(city string) bool {
	if city == "" {
		return true
	}
	return strings.EqualFold(r.City(), city)
}
