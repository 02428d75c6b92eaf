// Package store persists mapping configuration and fitment results in the
// primary relational store.
package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/partstream/fitment/internal/model"
)

// ListOptions filters and orders a mapping listing
type ListOptions struct {
	PatternFilter string // substring match against the pattern column
	SortBy        string // "priority", "id" or "pattern"
	Descending    bool
	Limit         uint64
	Offset        uint64
}

// MappingStore provides CRUD over vehicle phrase mapping rows
type MappingStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewMappingStore wires a sql.DB implementation
func NewMappingStore(db *sql.DB) *MappingStore {
	return &MappingStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const mappingColumns = "id, pattern, is_regex, make, vehicle_code, model, engine, transmission, priority, active, created_at, updated_at"

// Create inserts a new mapping row and returns its id
func (s *MappingStore) Create(ctx context.Context, m model.VehiclePhraseMapping) (int64, error) {
	sqlText, args, err := s.builder.
		Insert("vehicle_phrase_mappings").
		Columns("pattern", "is_regex", "make", "vehicle_code", "model", "engine", "transmission", "priority", "active").
		Values(m.Pattern, m.IsRegex, m.Canonical.Make, m.Canonical.VehicleCode, m.Canonical.Model,
			m.Canonical.Engine, m.Canonical.Transmission, m.Priority, m.Active).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, &model.DatabaseError{Op: "create mapping", Cause: err}
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, sqlText, args...).Scan(&id); err != nil {
		return 0, &model.DatabaseError{Op: "create mapping", Cause: err}
	}
	return id, nil
}

// Update rewrites an existing mapping row
func (s *MappingStore) Update(ctx context.Context, m model.VehiclePhraseMapping) error {
	sqlText, args, err := s.builder.
		Update("vehicle_phrase_mappings").
		Set("pattern", m.Pattern).
		Set("is_regex", m.IsRegex).
		Set("make", m.Canonical.Make).
		Set("vehicle_code", m.Canonical.VehicleCode).
		Set("model", m.Canonical.Model).
		Set("engine", m.Canonical.Engine).
		Set("transmission", m.Canonical.Transmission).
		Set("priority", m.Priority).
		Set("active", m.Active).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return &model.DatabaseError{Op: "update mapping", Cause: err}
	}

	if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
		return &model.DatabaseError{Op: "update mapping", Cause: err}
	}
	return nil
}

// Delete removes a mapping row
func (s *MappingStore) Delete(ctx context.Context, id int64) error {
	sqlText, args, err := s.builder.
		Delete("vehicle_phrase_mappings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return &model.DatabaseError{Op: "delete mapping", Cause: err}
	}

	if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
		return &model.DatabaseError{Op: "delete mapping", Cause: err}
	}
	return nil
}

// Get loads one mapping row, or nil when the id is unknown
func (s *MappingStore) Get(ctx context.Context, id int64) (*model.VehiclePhraseMapping, error) {
	sqlText, args, err := s.builder.
		Select(mappingColumns).
		From("vehicle_phrase_mappings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, &model.DatabaseError{Op: "get mapping", Cause: err}
	}

	m, err := scanMapping(s.db.QueryRowContext(ctx, sqlText, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &model.DatabaseError{Op: "get mapping", Cause: err}
	}
	return m, nil
}

// List returns mapping rows matching the options
func (s *MappingStore) List(ctx context.Context, opts ListOptions) ([]model.VehiclePhraseMapping, error) {
	builder := s.builder.
		Select(mappingColumns).
		From("vehicle_phrase_mappings")

	if opts.PatternFilter != "" {
		builder = builder.Where(sq.ILike{"pattern": "%" + opts.PatternFilter + "%"})
	}

	order := "id"
	switch opts.SortBy {
	case "priority":
		order = "priority"
	case "pattern":
		order = "pattern"
	}
	direction := " ASC"
	if opts.Descending {
		direction = " DESC"
	}
	builder = builder.OrderBy(order+direction, "id ASC")

	if opts.Limit > 0 {
		builder = builder.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		builder = builder.Offset(opts.Offset)
	}

	sqlText, args, err := builder.ToSql()
	if err != nil {
		return nil, &model.DatabaseError{Op: "list mappings", Cause: err}
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &model.DatabaseError{Op: "list mappings", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.VehiclePhraseMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, &model.DatabaseError{Op: "scan mapping", Cause: err}
		}
		mappings = append(mappings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DatabaseError{Op: "list mappings", Cause: err}
	}

	return mappings, nil
}

// ListActive returns every active mapping row, in no particular order; the
// snapshot applies the priority ordering
func (s *MappingStore) ListActive(ctx context.Context) ([]model.VehiclePhraseMapping, error) {
	sqlText, args, err := s.builder.
		Select(mappingColumns).
		From("vehicle_phrase_mappings").
		Where(sq.Eq{"active": true}).
		ToSql()
	if err != nil {
		return nil, &model.DatabaseError{Op: "list active mappings", Cause: err}
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &model.DatabaseError{Op: "list active mappings", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.VehiclePhraseMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, &model.DatabaseError{Op: "scan mapping", Cause: err}
		}
		mappings = append(mappings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DatabaseError{Op: "list active mappings", Cause: err}
	}

	return mappings, nil
}

// Import upserts every mapping in the payload, keyed by pattern, and returns
// the number of rows written
func (s *MappingStore) Import(ctx context.Context, payload model.MappingPayload) (int, error) {
	count := 0
	for _, m := range payload.Mappings {
		sqlText, args, err := s.builder.
			Insert("vehicle_phrase_mappings").
			Columns("pattern", "is_regex", "make", "vehicle_code", "model", "engine", "transmission", "priority", "active").
			Values(m.Pattern, m.IsRegex, m.Canonical.Make, m.Canonical.VehicleCode, m.Canonical.Model,
				m.Canonical.Engine, m.Canonical.Transmission, m.Priority, m.Active).
			Suffix(`ON CONFLICT (pattern) DO UPDATE
				SET is_regex = EXCLUDED.is_regex,
				    make = EXCLUDED.make,
				    vehicle_code = EXCLUDED.vehicle_code,
				    model = EXCLUDED.model,
				    engine = EXCLUDED.engine,
				    transmission = EXCLUDED.transmission,
				    priority = EXCLUDED.priority,
				    active = EXCLUDED.active,
				    updated_at = NOW()`).
			ToSql()
		if err != nil {
			return count, &model.DatabaseError{Op: "import mapping", Cause: err}
		}

		if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
			return count, &model.DatabaseError{Op: "import mapping", Cause: err}
		}
		count++
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanMapping
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMapping(row scanner) (*model.VehiclePhraseMapping, error) {
	var m model.VehiclePhraseMapping
	var engine, transmission sql.NullString
	err := row.Scan(&m.ID, &m.Pattern, &m.IsRegex,
		&m.Canonical.Make, &m.Canonical.VehicleCode, &m.Canonical.Model,
		&engine, &transmission, &m.Priority, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Canonical.Engine = engine.String
	m.Canonical.Transmission = transmission.String
	return &m, nil
}
