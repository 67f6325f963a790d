package service

import (
	"context"
	"database/sql"
	"fmt"
)

// StatsService calculates directory-wide analytics for the admin console
type StatsService struct {
	db *sql.DB
}

// NewStatsService creates a new StatsService
func NewStatsService(db *sql.DB) *StatsService {
	return &StatsService{db: db}
}

// DirectoryStats represents calculated directory-wide analytics
type DirectoryStats struct {
	TotalOfficiants   int     `json:"totalOfficiants"`
	GeocodedCount     int     `json:"geocodedCount"`
	GeocodedPercent   float64 `json:"geocodedPercent"`
	MunicipalityCount int     `json:"municipalityCount"`
	AffiliationCount  int     `json:"affiliationCount"`
	LastSyncStatus    string  `json:"lastSyncStatus,omitempty"`
	LastSyncAt        string  `json:"lastSyncAt,omitempty"`
}

// Calculate computes the current directory analytics
func (m *StatsService) Calculate(ctx context.Context) (*DirectoryStats, error) {
	stats := &DirectoryStats{}

	listingQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(lat) as geocoded,
			COUNT(DISTINCT municipality) as municipalities,
			COUNT(DISTINCT affiliation) as affiliations
		FROM officiants
	`
	err := m.db.QueryRowContext(ctx, listingQuery).Scan(
		&stats.TotalOfficiants,
		&stats.GeocodedCount,
		&stats.MunicipalityCount,
		&stats.AffiliationCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate listing stats: %w", err)
	}

	if stats.TotalOfficiants > 0 {
		stats.GeocodedPercent = float64(stats.GeocodedCount) / float64(stats.TotalOfficiants) * 100
	}

	lastSyncQuery := `
		SELECT status, started_at::text
		FROM sync_log
		ORDER BY started_at DESC
		LIMIT 1
	`
	err = m.db.QueryRowContext(ctx, lastSyncQuery).Scan(&stats.LastSyncStatus, &stats.LastSyncAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read last sync: %w", err)
	}

	return stats, nil
}
