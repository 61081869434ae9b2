package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
)

// LoadSeed reads one catalogue kind's seed file (<seedDir>/<kind>.json, a JSON
// array of rows). Every row must carry a city field; city-scoped filtering
// depends on it.
func LoadSeed(seedDir string, kind domain.Kind) ([]domain.Row, error) {
	path := filepath.Join(seedDir, string(kind)+".json")

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}

	var rows []domain.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}

	for i, r := range rows {
		if r.City() == "" {
			return nil, fmt.Errorf("seed %s: row %d has no city field", path, i)
		}
	}

	return rows, nil
}
