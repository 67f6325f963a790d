package store

import (
	"context"
	"database/sql"
	"fmt"
)

// LookupStore maintains the denormalized affiliation and municipality lists
// used for filter dropdowns and autocomplete. Both tables are cleared and
// repopulated at the end of each sync run.
type LookupStore struct {
	db *sql.DB
}

// NewLookupStore creates a new LookupStore
func NewLookupStore(db *sql.DB) *LookupStore {
	return &LookupStore{db: db}
}

// Affiliations returns the cached affiliation list
func (s *LookupStore) Affiliations(ctx context.Context) ([]string, error) {
	return s.names(ctx, "cached_affiliations")
}

// Municipalities returns the cached municipality list
func (s *LookupStore) Municipalities(ctx context.Context) ([]string, error) {
	return s.names(ctx, "cached_municipalities")
}

// ReplaceAffiliations clears and repopulates the affiliation list
func (s *LookupStore) ReplaceAffiliations(ctx context.Context, names []string) error {
	return s.replace(ctx, "cached_affiliations", names)
}

// ReplaceMunicipalities clears and repopulates the municipality list
func (s *LookupStore) ReplaceMunicipalities(ctx context.Context, names []string) error {
	return s.replace(ctx, "cached_municipalities", names)
}

func (s *LookupStore) names(ctx context.Context, table string) ([]string, error) {
	query := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (s *LookupStore) replace(ctx context.Context, table string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1)`, table)
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, name); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}

	return nil
}
