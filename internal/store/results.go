package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/partstream/fitment/internal/model"
)

// ResultSink persists validated fitments for a catalog entry
type ResultSink struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewResultSink wires a sql.DB implementation
func NewResultSink(db *sql.DB) *ResultSink {
	return &ResultSink{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveResults upserts the validation results for one catalog entry. Reruns of
// the same entry overwrite the previous verdicts.
func (s *ResultSink) SaveResults(ctx context.Context, catalogEntryID string, results []model.ValidationResult) error {
	for _, r := range results {
		sqlText, args, err := s.builder.
			Insert("fitment_results").
			Columns("catalog_entry_id", "year", "make", "vehicle_code", "model", "positions", "status", "message").
			Values(catalogEntryID, r.Candidate.Year, r.Candidate.Make, r.Candidate.VehicleCode,
				r.Candidate.Model, r.Candidate.Positions.String(), string(r.Status), r.Message).
			Suffix(`ON CONFLICT (catalog_entry_id, year, make, model, positions) DO UPDATE
				SET vehicle_code = EXCLUDED.vehicle_code,
				    status = EXCLUDED.status,
				    message = EXCLUDED.message,
				    updated_at = NOW()`).
			ToSql()
		if err != nil {
			return &model.DatabaseError{Op: "save results", Cause: err}
		}

		if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
			return &model.DatabaseError{Op: "save results", Cause: err}
		}
	}
	return nil
}
