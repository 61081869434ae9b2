package intent

import (
	"testing"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
)

var testCities = []string{"Tokyo", "Barcelona", "Cape Town"}

func TestParse_ExtractsCityAndTheme(t *testing.T) {
	e := NewExtractor(testCities)

	tests := []struct {
		query     string
		wantCity  string
		wantTheme string
	}{
		{"foodie trip to Tokyo in spring", "Tokyo", "foodie trip to  in spring"},
		{"TOKYO nightlife", "Tokyo", "nightlife"},
		{"beach holiday near barcelona!", "Barcelona", "beach holiday near"},
		{"romantic weekend", "", "romantic weekend"},
	}

	for _, tt := range tests {
		city, theme := e.Parse(tt.query)
		if city != tt.wantCity {
			t.Errorf("Parse(%q) city = %q, want %q", tt.query, city, tt.wantCity)
		}
		if theme != tt.wantTheme {
			t.Errorf("Parse(%q) theme = %q, want %q", tt.query, theme, tt.wantTheme)
		}
	}
}

func TestParse_CityOnlyQueryKeepsOriginalTheme(t *testing.T) {
	e := NewExtractor(testCities)

	city, theme := e.Parse("Tokyo")
	if city != "Tokyo" {
		t.Errorf("city = %q, want Tokyo", city)
	}
	// Residue is empty after removal, so the theme falls back to the query.
	if theme != "Tokyo" {
		t.Errorf("theme = %q, want Tokyo", theme)
	}
}

func TestParse_FirstMatchIsDeterministic(t *testing.T) {
	e := NewExtractor([]string{"Tokyo", "Barcelona"})

	// Both cities occur; sorted order makes Barcelona win every time.
	for i := 0; i < 5; i++ {
		city, _ := e.Parse("Tokyo or Barcelona?")
		if city != "Barcelona" {
			t.Fatalf("city = %q, want Barcelona (sorted first match)", city)
		}
	}
}

func TestCanonical(t *testing.T) {
	e := NewExtractor(testCities)

	if c, ok := e.Canonical("cape town"); !ok || c != "Cape Town" {
		t.Errorf("Canonical(cape town) = %q, %v", c, ok)
	}
	if _, ok := e.Canonical("Atlantis"); ok {
		t.Error("Canonical(Atlantis) should be unknown")
	}
}

// stubHotels serves fixed hotel rows per city.
type stubHotels struct {
	byCity map[string][]domain.Row
}

func (s *stubHotels) HotelRowsByCity(city string) []domain.Row {
	return s.byCity[city]
}

func pickerFixture() *Picker {
	hotels := &stubHotels{byCity: map[string][]domain.Row{
		"Tokyo": {
			{"city": "Tokyo", "country": "Japan", "continent": "Asia",
				"themes": []any{"food", "culture"}},
		},
		"Barcelona": {
			{"city": "Barcelona", "country": "Spain", "continent": "Europe",
				"themes": []any{"beach", "culture"}},
		},
		"Cape Town": {
			{"city": "Cape Town", "country": "South Africa", "continent": "Africa",
				"themes": []any{"beach", "mountain"}},
		},
	}}
	return NewPicker(testCities, hotels)
}

func TestPickCity_CountryMention(t *testing.T) {
	p := pickerFixture()

	if got := p.PickCity("two weeks in japan with kids"); got != "Tokyo" {
		t.Errorf("PickCity = %q, want Tokyo", got)
	}
	if got := p.PickCity("exploring Spain on a budget"); got != "Barcelona" {
		t.Errorf("PickCity = %q, want Barcelona", got)
	}
}

func TestPickCity_ContinentKeyword(t *testing.T) {
	p := pickerFixture()

	// "asian" hits the asia bucket; Tokyo is the only Asia city.
	if got := p.PickCity("asian street food adventure"); got != "Tokyo" {
		t.Errorf("PickCity = %q, want Tokyo", got)
	}
}

func TestPickCity_ThemeKeyword(t *testing.T) {
	p := pickerFixture()

	// Barcelona sorts before Cape Town; both carry the beach theme.
	if got := p.PickCity("beach trip in July"); got != "Barcelona" {
		t.Errorf("PickCity = %q, want Barcelona", got)
	}
	if got := p.PickCity("mountain hiking escape"); got != "Cape Town" {
		t.Errorf("PickCity = %q, want Cape Town", got)
	}
}

func TestPickCity_LastResortIsFirstSortedCity(t *testing.T) {
	p := pickerFixture()

	if got := p.PickCity("somewhere relaxing"); got != "Barcelona" {
		t.Errorf("PickCity = %q, want Barcelona (first sorted)", got)
	}
}

func TestPickCity_NoCities(t *testing.T) {
	p := NewPicker(nil, &stubHotels{})

	if got := p.PickCity("anywhere"); got != "" {
		t.Errorf("PickCity = %q, want empty", got)
	}
}

func TestPickCity_MissingHotelRowsSkipsCity(t *testing.T) {
	// Barcelona has no hotel rows at all; the scan skips it without failing.
	hotels := &stubHotels{byCity: map[string][]domain.Row{
		"Tokyo": {{"city": "Tokyo", "country": "Japan", "continent": "Asia"}},
	}}
	p := NewPicker(testCities, hotels)

	if got := p.PickCity("japan in autumn"); got != "Tokyo" {
		t.Errorf("PickCity = %q, want Tokyo", got)
	}
}
