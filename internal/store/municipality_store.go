package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmorris/officiantfinder/internal/geo"
)

// MunicipalityStore persists geocoded municipality centroids so sync runs
// can reuse resolutions across processes. Keys are lower-cased trimmed names.
type MunicipalityStore struct {
	db *sql.DB
}

// NewMunicipalityStore creates a new MunicipalityStore
func NewMunicipalityStore(db *sql.DB) *MunicipalityStore {
	return &MunicipalityStore{db: db}
}

// LoadAll returns every persisted geocode entry
func (s *MunicipalityStore) LoadAll(ctx context.Context) (map[string]geo.Coordinates, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, lat, lng FROM municipalities`)
	if err != nil {
		return nil, fmt.Errorf("failed to load municipalities: %w", err)
	}
	defer rows.Close()

	cache := make(map[string]geo.Coordinates)
	for rows.Next() {
		var name string
		var c geo.Coordinates
		if err := rows.Scan(&name, &c.Lat, &c.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan municipality: %w", err)
		}
		cache[strings.ToLower(strings.TrimSpace(name))] = c
	}

	return cache, rows.Err()
}

// Upsert persists one resolved municipality
func (s *MunicipalityStore) Upsert(ctx context.Context, name string, coords geo.Coordinates) error {
	query := `
		INSERT INTO municipalities (name, lat, lng)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng
	`

	key := strings.ToLower(strings.TrimSpace(name))
	if _, err := s.db.ExecContext(ctx, query, key, coords.Lat, coords.Lng); err != nil {
		return fmt.Errorf("failed to upsert municipality %s: %w", key, err)
	}

	return nil
}
