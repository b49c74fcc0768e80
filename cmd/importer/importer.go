package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"geoplaces-api/internal/models"
	"geoplaces-api/internal/presenter"
	"geoplaces-api/internal/repository"

	"github.com/jackc/pgx/v5"
)

// normalizer is the part of geo.Normalizer the importer needs.
type normalizer interface {
	Normalize(longitude, latitude float64, srid int) (models.Point, error)
	CanonicalSRID() int
}

// parseCSV reads rows of name,description,latitude,longitude[,srid] after a
// header line and validates them the way the API does.
func parseCSV(r io.Reader, n normalizer) ([]models.PlaceDraft, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // srid column is optional

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	decoder := presenter.NewDecoder(n)

	var drafts []models.PlaceDraft
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if len(record) < 4 {
			return nil, fmt.Errorf("line %d: invalid record length %d, expected at least 4 columns", line, len(record))
		}

		in, err := toInput(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		draft, err := decoder.DecodeCreate(in)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

func toInput(record []string) (presenter.PlaceInput, error) {
	name, description := record[0], record[1]

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return presenter.PlaceInput{}, fmt.Errorf("invalid latitude: %s", record[2])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return presenter.PlaceInput{}, fmt.Errorf("invalid longitude: %s", record[3])
	}

	in := presenter.PlaceInput{Name: &name, Description: &description, Latitude: &lat, Longitude: &lon}
	if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
		srid, err := strconv.Atoi(strings.TrimSpace(record[4]))
		if err != nil {
			return presenter.PlaceInput{}, fmt.Errorf("invalid srid: %s", record[4])
		}
		in.SRID = &srid
	}
	return in, nil
}

// importRecords bulk loads drafts into a staging table with CopyFrom and moves
// them into places, skipping geometries that already exist. It returns how
// many rows were inserted.
func importRecords(ctx context.Context, conn *pgx.Conn, drafts []models.PlaceDraft) (int64, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, repository.PostgresSchema); err != nil {
		return 0, fmt.Errorf("failed to ensure schema: %w", err)
	}

	_, err = tx.Exec(ctx, `
	CREATE TEMP TABLE places_import (
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		srid INTEGER NOT NULL
	) ON COMMIT DROP`)
	if err != nil {
		return 0, fmt.Errorf("failed to create staging table: %w", err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"places_import"},
		[]string{"name", "description", "longitude", "latitude", "srid"},
		pgx.CopyFromSlice(len(drafts), func(i int) ([]interface{}, error) {
			d := drafts[i]
			return []interface{}{d.Name, d.Description, d.Geom.X, d.Geom.Y, int32(d.Geom.SRID)}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy records: %w", err)
	}

	tag, err := tx.Exec(ctx, `
	INSERT INTO places (name, description, geom)
	SELECT DISTINCT ON (srid, longitude, latitude)
		name, description, ST_SetSRID(ST_MakePoint(longitude, latitude), srid)
	FROM places_import
	ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to insert places: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
