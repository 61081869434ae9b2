// Package index implements a flat nearest-neighbor index over embedded
// catalogue rows. Vectors and rows are parallel lists: the row at position i
// is retrieved via position i, and that position is stamped onto the row at
// build time so subset search can find its vector later.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
)

// Embedder is the consumer contract for query and row vectorization.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Artifact file suffixes. Save/Load always handle the pair together.
const (
	vectorSuffix = ".vec.json"
	metaSuffix   = ".meta.json"
)

// Index is a flat similarity index. Built or loaded once, read-only afterwards.
type Index struct {
	embedder Embedder
	vectors  [][]float32
	rows     []domain.Row
}

// New creates an empty index bound to an embedder.
func New(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return len(ix.rows) }

// Rows returns the indexed rows in position order. Callers must not mutate them.
func (ix *Index) Rows() []domain.Row { return ix.rows }

// Build assigns positional identifiers, embeds each row's flattened text in
// batches of at most batchSize, and stores vectors in row order. An empty row
// set yields an empty index, not an error; searches against it will fail.
func (ix *Index) Build(ctx context.Context, rows []domain.Row, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	ix.rows = make([]domain.Row, len(rows))
	texts := make([]string, len(rows))
	for i, r := range rows {
		ix.rows[i] = r.WithID(i)
		texts[i] = ix.rows[i].Flatten()
	}

	ix.vectors = make([][]float32, 0, len(rows))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		res, err := ix.embedder.BatchEmbed(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("embed rows [%d:%d]: %w", start, end, err)
		}
		ix.vectors = append(ix.vectors, res.Embeddings...)
	}

	return nil
}

// vectorArtifact is the on-disk form of the vector half of the index.
type vectorArtifact struct {
	Dim     int         `json:"dim"`
	Vectors [][]float32 `json:"vectors"`
}

// Save persists the index as two companion artifacts sharing basePath.
func (ix *Index) Save(basePath string) error {
	dim := 0
	if len(ix.vectors) > 0 {
		dim = len(ix.vectors[0])
	}

	vecData, err := json.Marshal(vectorArtifact{Dim: dim, Vectors: ix.vectors})
	if err != nil {
		return fmt.Errorf("marshal vectors: %w", err)
	}
	metaData, err := json.Marshal(ix.rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(basePath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(basePath+vectorSuffix, vecData, 0o644); err != nil {
		return fmt.Errorf("write vector artifact: %w", err)
	}
	if err := os.WriteFile(basePath+metaSuffix, metaData, 0o644); err != nil {
		return fmt.Errorf("write meta artifact: %w", err)
	}
	return nil
}

// Load restores an index from its two companion artifacts. Both files must be
// present and hold the same cardinality, otherwise the index is corrupt.
func (ix *Index) Load(basePath string) error {
	vecData, err := os.ReadFile(basePath + vectorSuffix)
	if err != nil {
		return fmt.Errorf("%w: read vector artifact: %v", domain.ErrCorruptIndex, err)
	}
	metaData, err := os.ReadFile(basePath + metaSuffix)
	if err != nil {
		return fmt.Errorf("%w: read meta artifact: %v", domain.ErrCorruptIndex, err)
	}

	var va vectorArtifact
	if err := json.Unmarshal(vecData, &va); err != nil {
		return fmt.Errorf("%w: parse vector artifact: %v", domain.ErrCorruptIndex, err)
	}
	var rows []domain.Row
	if err := json.Unmarshal(metaData, &rows); err != nil {
		return fmt.Errorf("%w: parse meta artifact: %v", domain.ErrCorruptIndex, err)
	}

	if len(va.Vectors) != len(rows) {
		return fmt.Errorf("%w: %d vectors for %d rows", domain.ErrCorruptIndex, len(va.Vectors), len(rows))
	}

	ix.vectors = va.Vectors
	ix.rows = rows
	return nil
}

// Search embeds the query once and returns the k rows nearest by squared
// Euclidean distance. Ties break toward the lower position.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]domain.Row, error) {
	if len(ix.vectors) == 0 {
		return nil, domain.ErrIndexEmpty
	}

	res, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	q := res.Embedding

	type scored struct {
		pos  int
		dist float64
	}
	ranked := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		ranked[i] = scored{pos: i, dist: squaredL2(q, v)}
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].dist != ranked[b].dist {
			return ranked[a].dist < ranked[b].dist
		}
		return ranked[a].pos < ranked[b].pos
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]domain.Row, k)
	for i := 0; i < k; i++ {
		out[i] = ix.rows[ranked[i].pos]
	}
	return out, nil
}

// SearchSubset ranks an explicit candidate row list by cosine distance to the
// query and returns up to k rows, most similar first. An empty candidate list
// short-circuits to an empty result without touching the index or the
// embedder. Candidate vectors are resolved via the position id stamped at
// build time.
//
// Note the metric differs from Search (cosine vs squared Euclidean); this
// mirrors the historical serving behavior and is kept deliberately.
func (ix *Index) SearchSubset(ctx context.Context, query string, rows []domain.Row, k int) ([]domain.Row, error) {
	if len(rows) == 0 {
		return []domain.Row{}, nil
	}
	if len(ix.vectors) == 0 {
		return nil, domain.ErrIndexEmpty
	}

	res, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	q := res.Embedding

	type scored struct {
		row  domain.Row
		dist float64
	}
	ranked := make([]scored, 0, len(rows))
	for _, r := range rows {
		id, ok := r.ID()
		if !ok || id < 0 || id >= len(ix.vectors) {
			return nil, fmt.Errorf("row %q has no valid position id", r.City())
		}
		ranked = append(ranked, scored{row: r, dist: cosineDistance(q, ix.vectors[id])})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].dist < ranked[b].dist
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]domain.Row, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].row
	}
	return out, nil
}

func squaredL2(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// cosineDistance = 1 - cos(a, b), with a small epsilon guarding zero vectors.
func cosineDistance(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb)+1e-8)
}
