package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"geoplaces-api/internal/geo"
	"geoplaces-api/internal/models"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// WGS84Converter resolves stored points to WGS 84 longitude/latitude.
type WGS84Converter interface {
	ToWGS84(p models.Point) (lon, lat float64, err error)
}

// SQLiteRepository implements the place repository on an embedded SQLite
// database. SQLite has no geodesy, so distances are great-circle distances
// computed in process.
type SQLiteRepository struct {
	db   *sql.DB
	conv WGS84Converter
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(db *sql.DB, conv WGS84Converter) *SQLiteRepository {
	return &SQLiteRepository{db: db, conv: conv}
}

// OpenSQLite opens the database at dsn and creates the schema if needed.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite: %w", err)
	}

	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: create sqlite schema: %w", err)
	}

	return db, nil
}

// Ping checks database connectivity
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create inserts a new place after checking no other place has the same geometry
func (r *SQLiteRepository) Create(ctx context.Context, draft models.PlaceDraft) (*models.Place, error) {
	exists, err := r.geometryTaken(ctx, r.db, draft.Geom, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("repository: %w", models.ErrDuplicateGeometry)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO places (name, description, longitude, latitude, srid)
		VALUES (?, ?, ?, ?, ?)
	`, draft.Name, draft.Description, draft.Geom.X, draft.Geom.Y, draft.Geom.SRID)
	if err != nil {
		return nil, translateSQLiteError("failed to insert place", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to read inserted id: %w", err)
	}

	return &models.Place{
		ID:          id,
		Name:        draft.Name,
		Description: draft.Description,
		Geom:        draft.Geom,
	}, nil
}

// Get returns the place with the given id
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.Place, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, longitude, latitude, srid
		FROM places WHERE id = ?
	`, id)

	place, err := scanSQLitePlace(row)
	if err != nil {
		return nil, translateSQLiteError("failed to get place", err)
	}
	return place, nil
}

// List returns every place ordered by id
func (r *SQLiteRepository) List(ctx context.Context) ([]models.Place, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, longitude, latitude, srid
		FROM places ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute list query: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanSQLitePlace(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan place: %w", err)
		}
		places = append(places, *place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return places, nil
}

// Update applies the non-nil fields of upd to the place with the given id
func (r *SQLiteRepository) Update(ctx context.Context, id int64, upd models.PlaceUpdate) (*models.Place, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: begin: %w", err)
	}
	defer tx.Rollback()

	current, err := scanSQLitePlace(tx.QueryRowContext(ctx, `
		SELECT id, name, description, longitude, latitude, srid
		FROM places WHERE id = ?
	`, id))
	if err != nil {
		return nil, translateSQLiteError("failed to load place", err)
	}

	if upd.Geom != nil {
		exists, err := r.geometryTaken(ctx, tx, *upd.Geom, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("repository: %w", models.ErrDuplicateGeometry)
		}
	}

	next := upd.Apply(*current)

	_, err = tx.ExecContext(ctx, `
		UPDATE places
		SET name = ?, description = ?, longitude = ?, latitude = ?, srid = ?
		WHERE id = ?
	`, next.Name, next.Description, next.Geom.X, next.Geom.Y, next.Geom.SRID, id)
	if err != nil {
		return nil, translateSQLiteError("failed to update place", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateSQLiteError("failed to commit update", err)
	}

	return &next, nil
}

// Delete removes the place with the given id
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete place: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repository: %w", models.ErrNotFound)
	}
	return nil
}

// AnnotateDistances returns every place, in id order, with its great-circle
// distance in meters to ref
func (r *SQLiteRepository) AnnotateDistances(ctx context.Context, ref models.ReferencePoint) ([]models.PlaceWithDistance, error) {
	refLon, refLat, err := r.conv.ToWGS84(models.Point{X: ref.Longitude, Y: ref.Latitude, SRID: ref.SRID})
	if err != nil {
		return nil, fmt.Errorf("repository: reference point: %w", err)
	}

	places, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	annotated := make([]models.PlaceWithDistance, 0, len(places))
	for _, p := range places {
		lon, lat, err := r.conv.ToWGS84(p.Geom)
		if err != nil {
			return nil, fmt.Errorf("repository: place %d: %w", p.ID, err)
		}
		annotated = append(annotated, models.PlaceWithDistance{
			Place:    p,
			Distance: geo.Haversine(refLat, refLon, lat, lon),
		})
	}

	return annotated, nil
}

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteRepository) geometryTaken(ctx context.Context, q sqlQuerier, geom models.Point, excludeID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM places
			WHERE srid = ? AND longitude = ? AND latitude = ? AND id <> ?
		)
	`, geom.SRID, geom.X, geom.Y, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check geometry: %w", err)
	}
	return exists, nil
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePlace(row sqlScanner) (*models.Place, error) {
	var p models.Place
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Geom.X,
		&p.Geom.Y,
		&p.Geom.SRID,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func translateSQLiteError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("repository: %w", models.ErrNotFound)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")) {
			return fmt.Errorf("repository: %w", models.ErrDuplicateGeometry)
		}
	}

	return fmt.Errorf("repository: %s: %w", op, err)
}
