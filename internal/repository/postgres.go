package repository

import (
	"context"
	"errors"
	"fmt"

	"geoplaces-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const placeColumns = `id, name, description, ST_X(geom), ST_Y(geom), ST_SRID(geom)`

// PostgresRepository implements the place repository on PostgreSQL/PostGIS
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres creates a connection pool and verifies it can reach the server.
func OpenPostgres(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("repository: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: ping: %w", err)
	}

	return pool, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Create inserts a new place after checking no other place has the same geometry
func (r *PostgresRepository) Create(ctx context.Context, draft models.PlaceDraft) (*models.Place, error) {
	exists, err := geometryTaken(ctx, r.db, draft.Geom, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("repository: %w", models.ErrDuplicateGeometry)
	}

	sql := `
		INSERT INTO places (name, description, geom)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), $5))
		RETURNING ` + placeColumns

	place, err := scanPlace(r.db.QueryRow(ctx, sql,
		draft.Name, draft.Description, draft.Geom.X, draft.Geom.Y, draft.Geom.SRID))
	if err != nil {
		return nil, translatePgError("failed to insert place", err)
	}

	return place, nil
}

// Get returns the place with the given id
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Place, error) {
	sql := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	place, err := scanPlace(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, translatePgError("failed to get place", err)
	}

	return place, nil
}

// List returns every place ordered by id
func (r *PostgresRepository) List(ctx context.Context) ([]models.Place, error) {
	sql := `SELECT ` + placeColumns + ` FROM places ORDER BY id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute list query: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
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

// Update applies the non-nil fields of upd to the place with the given id.
// The row is locked for the duration of the duplicate-geometry check.
func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.PlaceUpdate) (*models.Place, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanPlace(tx.QueryRow(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translatePgError("failed to load place", err)
	}

	if upd.Geom != nil {
		exists, err := geometryTaken(ctx, tx, *upd.Geom, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("repository: %w", models.ErrDuplicateGeometry)
		}
	}

	next := upd.Apply(*current)

	sql := `
		UPDATE places
		SET name = $2, description = $3, geom = ST_SetSRID(ST_MakePoint($4, $5), $6)
		WHERE id = $1
		RETURNING ` + placeColumns

	place, err := scanPlace(tx.QueryRow(ctx, sql,
		id, next.Name, next.Description, next.Geom.X, next.Geom.Y, next.Geom.SRID))
	if err != nil {
		return nil, translatePgError("failed to update place", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translatePgError("failed to commit update", err)
	}

	return place, nil
}

// Delete removes the place with the given id
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repository: %w", models.ErrNotFound)
	}
	return nil
}

// AnnotateDistances returns every place with its geodesic distance in meters
// to ref, closest first
func (r *PostgresRepository) AnnotateDistances(ctx context.Context, ref models.ReferencePoint) ([]models.PlaceWithDistance, error) {
	sql := `
		SELECT
			` + placeColumns + `,
			ST_Distance(
				ST_Transform(geom, 4326)::geography,
				ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), $3), 4326)::geography
			) AS distance
		FROM places
		ORDER BY distance, id
	`

	rows, err := r.db.Query(ctx, sql, ref.Longitude, ref.Latitude, ref.SRID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute spatial query: %w", err)
	}
	defer rows.Close()

	annotated := []models.PlaceWithDistance{}
	for rows.Next() {
		var p models.PlaceWithDistance
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Geom.X,
			&p.Geom.Y,
			&p.Geom.SRID,
			&p.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan place: %w", err)
		}
		annotated = append(annotated, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return annotated, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// geometryTaken reports whether a place other than excludeID already has geom.
func geometryTaken(ctx context.Context, q querier, geom models.Point, excludeID int64) (bool, error) {
	sql := `
		SELECT EXISTS (
			SELECT 1 FROM places
			WHERE geom = ST_SetSRID(ST_MakePoint($1, $2), $3) AND id <> $4
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, sql, geom.X, geom.Y, geom.SRID, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check geometry: %w", err)
	}
	return exists, nil
}

func scanPlace(row pgx.Row) (*models.Place, error) {
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

func translatePgError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("repository: %w", models.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("repository: %w", models.ErrDuplicateGeometry)
	}

	return fmt.Errorf("repository: %s: %w", op, err)
}
