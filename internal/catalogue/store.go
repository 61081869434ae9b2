// Package catalogue exposes city-scoped similarity search over the three
// catalogue kinds. Indices are loaded once per process and served read-only;
// rebuilds happen offline via cmd/build-index.
package catalogue

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
	"github.com/kailas-cloud/travel-assistant/internal/index"
	"github.com/kailas-cloud/travel-assistant/internal/metrics"
)

const defaultK = 3

// searcher is the per-kind index contract the store depends on.
type searcher interface {
	Rows() []domain.Row
	Search(ctx context.Context, query string, k int) ([]domain.Row, error)
	SearchSubset(ctx context.Context, query string, rows []domain.Row, k int) ([]domain.Row, error)
}

// Store holds one similarity index per catalogue kind.
type Store struct {
	indices map[domain.Kind]searcher
	logger  *zap.Logger
}

// Load restores all three kind indices from their artifacts under dataDir.
func Load(dataDir string, embedder index.Embedder, logger *zap.Logger) (*Store, error) {
	indices := make(map[domain.Kind]searcher, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		ix := index.New(embedder)
		if err := ix.Load(filepath.Join(dataDir, string(kind))); err != nil {
			return nil, fmt.Errorf("load %s index: %w", kind, err)
		}
		indices[kind] = ix
	}
	return &Store{indices: indices, logger: logger}, nil
}

// NewWithIndices wires a store over pre-built indices. Intended for tests and
// the offline builder.
func NewWithIndices(indices map[domain.Kind]searcher, logger *zap.Logger) *Store {
	return &Store{indices: indices, logger: logger}
}

// SearchHotels returns up to k hotel rows for the query, scoped to city.
func (s *Store) SearchHotels(ctx context.Context, query string, k int, city string) []domain.Row {
	return s.search(ctx, domain.KindHotels, query, k, city)
}

// SearchFlights returns up to k flight rows for the query, scoped to city.
func (s *Store) SearchFlights(ctx context.Context, query string, k int, city string) []domain.Row {
	return s.search(ctx, domain.KindFlights, query, k, city)
}

// SearchExperiences returns up to k experience rows for the query, scoped to city.
func (s *Store) SearchExperiences(ctx context.Context, query string, k int, city string) []domain.Row {
	return s.search(ctx, domain.KindExperiences, query, k, city)
}

// search implements the shared scoping policy: restrict to the city's rows
// when any exist, fall back to a global search otherwise (which may surface
// rows from other cities; strict callers re-filter), and substitute a single
// placeholder row on any failure so the model always has grounding data.
func (s *Store) search(ctx context.Context, kind domain.Kind, query string, k int, city string) []domain.Row {
	if k <= 0 {
		k = defaultK
	}

	ix, ok := s.indices[kind]
	if !ok {
		return []domain.Row{Placeholder(kind, city)}
	}

	subset := filterByCity(ix.Rows(), city)

	var (
		rows []domain.Row
		err  error
	)
	if len(subset) > 0 {
		rows, err = ix.SearchSubset(ctx, query, subset, k)
	} else {
		rows, err = ix.Search(ctx, query, k)
	}
	if err != nil {
		s.logger.Warn("catalogue search failed, substituting placeholder",
			zap.String("kind", string(kind)),
			zap.String("city", city),
			zap.Error(err),
		)
		metrics.ToolDispatchTotal.WithLabelValues("search_"+string(kind), "placeholder").Inc()
		return []domain.Row{Placeholder(kind, city)}
	}

	return rows
}

// Rows returns the full row set for a kind, position order.
func (s *Store) Rows(kind domain.Kind) []domain.Row {
	if ix, ok := s.indices[kind]; ok {
		return ix.Rows()
	}
	return nil
}

// HotelRowsByCity returns the hotel rows whose city matches case-insensitively.
func (s *Store) HotelRowsByCity(city string) []domain.Row {
	return filterByCity(s.Rows(domain.KindHotels), city)
}

// Cities returns the sorted union of cities across all kinds. Sorted order
// keeps every first-match scan over the city set deterministic.
func (s *Store) Cities() []string {
	seen := make(map[string]string) // lower-cased -> first spelling
	for _, kind := range domain.Kinds() {
		for _, r := range s.Rows(kind) {
			c := r.City()
			if c == "" {
				continue
			}
			key := strings.ToLower(c)
			if _, ok := seen[key]; !ok {
				seen[key] = c
			}
		}
	}

	out := make([]string, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func filterByCity(rows []domain.Row, city string) []domain.Row {
	if city == "" {
		return nil
	}
	var out []domain.Row
	for _, r := range rows {
		if r.EqualCity(city) {
			out = append(out, r)
		}
	}
	return out
}
