package refdata

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/partstream/fitment/internal/model"
	"github.com/partstream/fitment/internal/worker"
)

// Dataset names used for rate limiting
const (
	vehicleDataset  = "vcdb"
	positionDataset = "pcdb"
)

// SQLVehicleSource reads the vehicle configuration dataset over a legacy SQL
// connection. The connection can hang, so every query is rate limited and
// bounded by a timeout; a timeout surfaces as *model.DatabaseError.
type SQLVehicleSource struct {
	db      *sql.DB
	limiter *worker.Limiter
	timeout time.Duration
	builder sq.StatementBuilderType
}

var _ VehicleFinder = (*SQLVehicleSource)(nil)

// NewSQLVehicleSource wires a vehicle dataset adapter
func NewSQLVehicleSource(db *sql.DB, limiter *worker.Limiter, timeout time.Duration) *SQLVehicleSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SQLVehicleSource{
		db:      db,
		limiter: limiter,
		timeout: timeout,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindVehicles returns reference vehicles matching the query
func (s *SQLVehicleSource) FindVehicles(ctx context.Context, query VehicleQuery) ([]model.ReferenceVehicle, error) {
	if err := s.limiter.Wait(ctx, vehicleDataset); err != nil {
		return nil, &model.DatabaseError{Op: "find vehicles", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	builder := s.builder.
		Select("year", "make", "model", "submodel", "engine", "transmission").
		From("vcdb_vehicles")

	if query.YearFrom > 0 {
		builder = builder.Where(sq.GtOrEq{"year": query.YearFrom})
	}
	if query.YearTo > 0 {
		builder = builder.Where(sq.LtOrEq{"year": query.YearTo})
	}
	if query.Make != "" {
		builder = builder.Where(sq.Eq{"LOWER(make)": strings.ToLower(query.Make)})
	}
	if query.Model != "" {
		builder = builder.Where(sq.Eq{"LOWER(model)": strings.ToLower(query.Model)})
	}

	sqlText, args, err := builder.OrderBy("year", "make", "model").ToSql()
	if err != nil {
		return nil, &model.DatabaseError{Op: "find vehicles", Cause: err}
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &model.DatabaseError{Op: "find vehicles", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	var vehicles []model.ReferenceVehicle
	for rows.Next() {
		var v model.ReferenceVehicle
		var submodel, engine, transmission sql.NullString
		if err := rows.Scan(&v.Year, &v.Make, &v.Model, &submodel, &engine, &transmission); err != nil {
			return nil, &model.DatabaseError{Op: "scan vehicle", Cause: err}
		}
		v.Submodel = submodel.String
		v.Engine = engine.String
		v.Transmission = transmission.String
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DatabaseError{Op: "find vehicles", Cause: err}
	}

	return vehicles, nil
}

// SQLPositionSource reads the part-position dataset over a legacy SQL
// connection
type SQLPositionSource struct {
	db      *sql.DB
	limiter *worker.Limiter
	timeout time.Duration
	builder sq.StatementBuilderType
}

var _ PositionFinder = (*SQLPositionSource)(nil)

// NewSQLPositionSource wires a position dataset adapter
func NewSQLPositionSource(db *sql.DB, limiter *worker.Limiter, timeout time.Duration) *SQLPositionSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SQLPositionSource{
		db:      db,
		limiter: limiter,
		timeout: timeout,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindPositions returns the valid positions for a part type
func (s *SQLPositionSource) FindPositions(ctx context.Context, partTypeID int64) ([]model.Position, error) {
	if err := s.limiter.Wait(ctx, positionDataset); err != nil {
		return nil, &model.DatabaseError{Op: "find positions", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sqlText, args, err := s.builder.
		Select("position").
		From("pcdb_part_positions").
		Where(sq.Eq{"part_type_id": partTypeID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, &model.DatabaseError{Op: "find positions", Cause: err}
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &model.DatabaseError{Op: "find positions", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	var positions []model.Position
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, &model.DatabaseError{Op: "scan position", Cause: err}
		}
		positions = append(positions, model.Position(p))
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DatabaseError{Op: "find positions", Cause: err}
	}

	return positions, nil
}

// FindPartType returns the part type descriptor, or nil when the id is
// unknown to the dataset
func (s *SQLPositionSource) FindPartType(ctx context.Context, partTypeID int64) (*model.PartType, error) {
	if err := s.limiter.Wait(ctx, positionDataset); err != nil {
		return nil, &model.DatabaseError{Op: "find part type", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sqlText, args, err := s.builder.
		Select("part_type_id", "name").
		From("pcdb_part_types").
		Where(sq.Eq{"part_type_id": partTypeID}).
		ToSql()
	if err != nil {
		return nil, &model.DatabaseError{Op: "find part type", Cause: err}
	}

	var pt model.PartType
	row := s.db.QueryRowContext(ctx, sqlText, args...)
	if err := row.Scan(&pt.ID, &pt.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &model.DatabaseError{Op: "find part type", Cause: err}
	}

	mandatory, err := s.mandatoryPositions(ctx, partTypeID)
	if err != nil {
		return nil, err
	}
	pt.MandatoryPositions = mandatory

	return &pt, nil
}

// mandatoryPositions returns the positions a part type requires
func (s *SQLPositionSource) mandatoryPositions(ctx context.Context, partTypeID int64) ([]model.Position, error) {
	sqlText, args, err := s.builder.
		Select("position").
		From("pcdb_part_positions").
		Where(sq.Eq{"part_type_id": partTypeID, "mandatory": true}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, &model.DatabaseError{Op: "find mandatory positions", Cause: err}
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &model.DatabaseError{Op: "find mandatory positions", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	var positions []model.Position
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, &model.DatabaseError{Op: "scan mandatory position", Cause: err}
		}
		positions = append(positions, model.Position(p))
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DatabaseError{Op: "find mandatory positions", Cause: err}
	}

	return positions, nil
}
