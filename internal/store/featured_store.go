package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// FeaturedStore reads active paid placements. Slots carry optional
// municipality/affiliation scope; a null scope column matches everything.
type FeaturedStore struct {
	db *sql.DB
}

// NewFeaturedStore creates a new FeaturedStore
func NewFeaturedStore(db *sql.DB) *FeaturedStore {
	return &FeaturedStore{db: db}
}

// ActiveFeaturedIDs returns officiant ids with an active slot of the given
// type whose scope matches the current search context
func (s *FeaturedStore) ActiveFeaturedIDs(ctx context.Context, municipality, affiliation, slotType string) ([]int, error) {
	conds := []string{
		"is_active",
		"starts_at <= $1",
		"ends_at >= $1",
		"slot_type = $2",
	}
	args := []interface{}{time.Now(), slotType}

	if municipality != "" {
		args = append(args, municipality)
		conds = append(conds, fmt.Sprintf("(municipality IS NULL OR municipality = $%d)", len(args)))
	}
	if affiliation != "" {
		args = append(args, affiliation)
		conds = append(conds, fmt.Sprintf("(affiliation IS NULL OR affiliation = $%d)", len(args)))
	}

	query := `SELECT officiant_id FROM featured_slots WHERE ` + strings.Join(conds, " AND ")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured slots: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan featured slot: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
