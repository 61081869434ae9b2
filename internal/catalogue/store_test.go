package catalogue

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
)

// mockIndex implements the searcher contract for tests.
type mockIndex struct {
	rows           []domain.Row
	searchFn       func(ctx context.Context, query string, k int) ([]domain.Row, error)
	searchSubsetFn func(ctx context.Context, query string, rows []domain.Row, k int) ([]domain.Row, error)
	subsetCalled   bool
	globalCalled   bool
}

func (m *mockIndex) Rows() []domain.Row { return m.rows }

func (m *mockIndex) Search(ctx context.Context, query string, k int) ([]domain.Row, error) {
	m.globalCalled = true
	if m.searchFn != nil {
		return m.searchFn(ctx, query, k)
	}
	if len(m.rows) > k {
		return m.rows[:k], nil
	}
	return m.rows, nil
}

func (m *mockIndex) SearchSubset(
	ctx context.Context, query string, rows []domain.Row, k int,
) ([]domain.Row, error) {
	m.subsetCalled = true
	if m.searchSubsetFn != nil {
		return m.searchSubsetFn(ctx, query, rows, k)
	}
	if len(rows) > k {
		return rows[:k], nil
	}
	return rows, nil
}

func hotelRows() []domain.Row {
	return []domain.Row{
		{"city": "Tokyo", "name": "Park Hotel", "country": "Japan", "continent": "Asia"},
		{"city": "Barcelona", "name": "Casa Mila Suites", "country": "Spain", "continent": "Europe"},
		{"city": "Tokyo", "name": "Shinjuku Inn", "country": "Japan", "continent": "Asia"},
	}
}

func newTestStore(hotels *mockIndex) *Store {
	return NewWithIndices(map[domain.Kind]searcher{
		domain.KindHotels:      hotels,
		domain.KindFlights:     &mockIndex{},
		domain.KindExperiences: &mockIndex{},
	}, zap.NewNop())
}

func TestSearchHotels_CityScopedUsesSubset(t *testing.T) {
	hotels := &mockIndex{rows: hotelRows()}
	s := newTestStore(hotels)

	got := s.SearchHotels(context.Background(), "quiet hotel", 3, "tokyo")

	if !hotels.subsetCalled {
		t.Error("expected subset search for a city with rows")
	}
	if hotels.globalCalled {
		t.Error("global search should not run when the city subset is non-empty")
	}
	for _, r := range got {
		if !r.EqualCity("Tokyo") {
			t.Errorf("row %v outside requested city", r)
		}
	}
}

func TestSearchHotels_UnknownCityFallsBackGlobal(t *testing.T) {
	hotels := &mockIndex{rows: hotelRows()}
	s := newTestStore(hotels)

	got := s.SearchHotels(context.Background(), "hotel", 2, "Atlantis")

	if !hotels.globalCalled {
		t.Error("expected global fallback for a city with no rows")
	}
	if len(got) != 2 {
		t.Errorf("got %d rows, want 2", len(got))
	}
}

func TestSearchHotels_NoCitySkipsFilter(t *testing.T) {
	hotels := &mockIndex{rows: hotelRows()}
	s := newTestStore(hotels)

	s.SearchHotels(context.Background(), "hotel", 3, "")

	if hotels.subsetCalled {
		t.Error("subset search should not run without a city")
	}
	if !hotels.globalCalled {
		t.Error("expected global search without a city")
	}
}

func TestSearchHotels_ErrorSubstitutesPlaceholder(t *testing.T) {
	hotels := &mockIndex{
		rows: hotelRows(),
		searchSubsetFn: func(context.Context, string, []domain.Row, int) ([]domain.Row, error) {
			return nil, errors.New("provider down")
		},
	}
	s := newTestStore(hotels)

	got := s.SearchHotels(context.Background(), "hotel", 3, "Tokyo")

	if len(got) != 1 {
		t.Fatalf("got %d rows, want exactly one placeholder", len(got))
	}
	if got[0].City() != "Tokyo" {
		t.Errorf("placeholder city = %q, want Tokyo", got[0].City())
	}
	if got[0].String("name") == "" {
		t.Error("placeholder must carry a name")
	}
}

func TestSearchFlights_PlaceholderHasFixedFields(t *testing.T) {
	s := NewWithIndices(map[domain.Kind]searcher{
		domain.KindFlights: &mockIndex{
			searchFn: func(context.Context, string, int) ([]domain.Row, error) {
				return nil, domain.ErrIndexEmpty
			},
		},
	}, zap.NewNop())

	got := s.SearchFlights(context.Background(), "cheap flight", 3, "Tokyo")

	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].String("from_airport") != "LHR" {
		t.Errorf("from_airport = %q, want LHR", got[0].String("from_airport"))
	}
	if got[0].String("duration") == "" || got[0].String("price") == "" {
		t.Error("flight placeholder must carry price and duration")
	}
}

func TestSearch_KDefaultsWhenNonPositive(t *testing.T) {
	var gotK int
	hotels := &mockIndex{
		rows: hotelRows(),
		searchFn: func(_ context.Context, _ string, k int) ([]domain.Row, error) {
			gotK = k
			return nil, nil
		},
	}
	s := newTestStore(hotels)

	s.SearchHotels(context.Background(), "hotel", 0, "")

	if gotK != defaultK {
		t.Errorf("k = %d, want default %d", gotK, defaultK)
	}
}

func TestCities_SortedUniqueAcrossKinds(t *testing.T) {
	s := NewWithIndices(map[domain.Kind]searcher{
		domain.KindHotels:      &mockIndex{rows: hotelRows()},
		domain.KindFlights:     &mockIndex{rows: []domain.Row{{"city": "Cape Town"}}},
		domain.KindExperiences: &mockIndex{rows: []domain.Row{{"city": "tokyo"}, {"city": "Barcelona"}}},
	}, zap.NewNop())

	got := s.Cities()
	want := []string{"Barcelona", "Cape Town", "Tokyo"}

	if len(got) != len(want) {
		t.Fatalf("cities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cities[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHotelRowsByCity(t *testing.T) {
	s := newTestStore(&mockIndex{rows: hotelRows()})

	got := s.HotelRowsByCity("TOKYO")
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	for _, r := range got {
		if !r.EqualCity("Tokyo") {
			t.Errorf("row %v not in Tokyo", r)
		}
	}
}
