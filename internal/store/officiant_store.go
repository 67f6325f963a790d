package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmorris/officiantfinder/internal/model"
)

// Filter holds the attribute filters shared by List and Count. All matches
// are case-insensitive containment.
type Filter struct {
	Affiliation  string // matched against affiliation
	Query        string // matched against first/last name and municipality
	Municipality string // matched against municipality only
}

// OfficiantStore handles database operations for officiant listings
type OfficiantStore struct {
	db *sql.DB
}

// NewOfficiantStore creates a new OfficiantStore
func NewOfficiantStore(db *sql.DB) *OfficiantStore {
	return &OfficiantStore{db: db}
}

const officiantColumns = `id, ontario_id, first_name, last_name, municipality, affiliation, lat, lng, created_at, updated_at`

// buildWhere translates a Filter into a WHERE clause and its arguments
func buildWhere(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Affiliation != "" {
		args = append(args, f.Affiliation)
		conds = append(conds, fmt.Sprintf("affiliation ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if f.Query != "" {
		args = append(args, f.Query)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE '%%' || $%d || '%%' OR last_name ILIKE '%%' || $%d || '%%' OR municipality ILIKE '%%' || $%d || '%%')",
			n, n, n))
	}
	if f.Municipality != "" {
		args = append(args, f.Municipality)
		conds = append(conds, fmt.Sprintf("municipality ILIKE '%%' || $%d || '%%'", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// List retrieves officiants matching the filter in stable id order.
// limit <= 0 fetches the entire filtered set.
func (s *OfficiantStore) List(ctx context.Context, f Filter, limit, offset int) ([]model.Officiant, error) {
	where, args := buildWhere(f)

	query := fmt.Sprintf(`SELECT %s FROM officiants %s ORDER BY id`, officiantColumns, where)
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list officiants: %w", err)
	}
	defer rows.Close()

	var officiants []model.Officiant
	for rows.Next() {
		o, err := scanOfficiant(rows)
		if err != nil {
			return nil, err
		}
		officiants = append(officiants, o)
	}

	return officiants, rows.Err()
}

// Count returns the number of officiants matching the filter
func (s *OfficiantStore) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildWhere(f)

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM officiants %s`, where)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count officiants: %w", err)
	}

	return count, nil
}

// GetByID retrieves a single officiant, nil when absent
func (s *OfficiantStore) GetByID(ctx context.Context, id int) (*model.Officiant, error) {
	query := fmt.Sprintf(`SELECT %s FROM officiants WHERE id = $1`, officiantColumns)

	var o model.Officiant
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&o.OntarioID,
		&o.FirstName,
		&o.LastName,
		&o.Municipality,
		&o.Affiliation,
		&o.Lat,
		&o.Lng,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get officiant %d: %w", id, err)
	}

	return &o, nil
}

// ExistingOntarioIDs returns the set of ontario_ids already present,
// used by sync to split upserts into insert vs update counts
func (s *OfficiantStore) ExistingOntarioIDs(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ontario_id FROM officiants`)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ontario_id: %w", err)
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// UpsertBatch writes a batch of officiants keyed by ontario_id in a single
// multi-row statement
func (s *OfficiantStore) UpsertBatch(ctx context.Context, officiants []model.Officiant) error {
	if len(officiants) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO officiants (ontario_id, first_name, last_name, municipality, affiliation, lat, lng, updated_at)
		VALUES `)

	args := make([]interface{}, 0, len(officiants)*8)
	now := time.Now()
	for i, o := range officiants {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, o.OntarioID, o.FirstName, o.LastName, o.Municipality, o.Affiliation, o.Lat, o.Lng, now)
	}

	sb.WriteString(`
		ON CONFLICT (ontario_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			municipality = EXCLUDED.municipality,
			affiliation = EXCLUDED.affiliation,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			updated_at = EXCLUDED.updated_at`)

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert officiants: %w", err)
	}

	return nil
}

// DistinctAffiliations returns all non-blank affiliations
func (s *OfficiantStore) DistinctAffiliations(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, "affiliation")
}

// DistinctMunicipalities returns all non-blank municipalities
func (s *OfficiantStore) DistinctMunicipalities(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, "municipality")
}

func (s *OfficiantStore) distinctColumn(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM officiants WHERE %s <> '' ORDER BY %s`, column, column, column)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

func scanOfficiant(rows *sql.Rows) (model.Officiant, error) {
	var o model.Officiant
	err := rows.Scan(
		&o.ID,
		&o.OntarioID,
		&o.FirstName,
		&o.LastName,
		&o.Municipality,
		&o.Affiliation,
		&o.Lat,
		&o.Lng,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return o, fmt.Errorf("failed to scan officiant: %w", err)
	}
	return o, nil
}
