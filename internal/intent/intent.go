// Package intent resolves the destination context before any model turn:
// either a known city named in the query, or a deterministic fallback pick.
// All scans iterate cities in sorted order so first-match is reproducible.
package intent

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
)

// Extractor pulls a known catalogue city out of free-text queries.
type Extractor struct {
	cities []string // sorted, canonical spelling
}

// NewExtractor creates an extractor over the known city set.
func NewExtractor(cities []string) *Extractor {
	sorted := append([]string(nil), cities...)
	sort.Strings(sorted)
	return &Extractor{cities: sorted}
}

// Cities returns the known cities in sorted order.
func (e *Extractor) Cities() []string { return e.cities }

// Parse scans the query for a known city (case-insensitive substring,
// first match in sorted city order). The theme is the query with the city
// mention removed once and trimmed; if nothing remains, the original query.
// Without a city match it returns ("", query).
func (e *Extractor) Parse(query string) (city, theme string) {
	lower := strings.ToLower(query)
	for _, c := range e.cities {
		idx := strings.Index(lower, strings.ToLower(c))
		if idx < 0 {
			continue
		}
		residue := query[:idx] + query[idx+len(c):]
		residue = strings.Trim(residue, " \t\n.,!?;:-")
		if residue == "" {
			residue = query
		}
		return c, residue
	}
	return "", query
}

// Canonical returns the catalogue spelling for a city named in any casing,
// and whether the city is known.
func (e *Extractor) Canonical(city string) (string, bool) {
	for _, c := range e.cities {
		if strings.EqualFold(c, city) {
			return c, true
		}
	}
	return "", false
}

// HotelSource provides hotel rows for fallback city ranking.
type HotelSource interface {
	HotelRowsByCity(city string) []domain.Row
}

// themeBucket maps query keywords onto a catalogue row field to scan for.
type themeBucket struct {
	name     string
	keywords []string
	field    string // "continent" or "themes"
}

// Fixed keyword table, checked in order.
var themeBuckets = []themeBucket{
	{name: "asia", keywords: []string{"asia", "asian"}, field: "continent"},
	{name: "beach", keywords: []string{"beach", "coast", "ocean"}, field: "themes"},
	{name: "mountain", keywords: []string{"mountain", "hiking", "ski"}, field: "themes"},
	{name: "food", keywords: []string{"food", "foodie", "culinary", "cuisine"}, field: "themes"},
}

// Picker chooses a destination city when the query names none.
type Picker struct {
	cities []string // sorted
	hotels HotelSource
}

// NewPicker creates a fallback picker over the known city set.
func NewPicker(cities []string, hotels HotelSource) *Picker {
	sorted := append([]string(nil), cities...)
	sort.Strings(sorted)
	return &Picker{cities: sorted, hotels: hotels}
}

// PickCity ranks cities against the theme text. Strategy, first match wins:
// country/continent mention on a city's hotel rows, then the keyword table
// against hotel theme tags, then the first known city. Returns "" only when
// the catalogue has no cities at all.
func (p *Picker) PickCity(theme string) string {
	if len(p.cities) == 0 {
		return ""
	}
	lower := strings.ToLower(theme)

	// 1. Direct country/continent mention.
	for _, city := range p.cities {
		for _, row := range p.hotels.HotelRowsByCity(city) {
			if fieldMentioned(lower, row.String("country")) ||
				fieldMentioned(lower, row.String("continent")) {
				return city
			}
		}
	}

	// 2. Keyword table against hotel rows.
	for _, bucket := range themeBuckets {
		if !containsAny(lower, bucket.keywords) {
			continue
		}
		for _, city := range p.cities {
			for _, row := range p.hotels.HotelRowsByCity(city) {
				if rowMatchesBucket(row, bucket) {
					return city
				}
			}
		}
	}

	// 3. Last resort: deterministic first city.
	return p.cities[0]
}

func fieldMentioned(theme, field string) bool {
	return field != "" && strings.Contains(theme, strings.ToLower(field))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func rowMatchesBucket(row domain.Row, bucket themeBucket) bool {
	if bucket.field == "continent" {
		return strings.EqualFold(row.String("continent"), bucket.name)
	}
	switch themes := row["themes"].(type) {
	case []any:
		for _, tv := range themes {
			if s, ok := tv.(string); ok && strings.EqualFold(s, bucket.name) {
				return true
			}
		}
	case []string:
		for _, s := range themes {
			if strings.EqualFold(s, bucket.name) {
				return true
			}
		}
	case string:
		return strings.Contains(strings.ToLower(themes), bucket.name)
	}
	return false
}
