package repository

// PostgresSchema creates the places table on a PostGIS-enabled database.
// The unique index on geom is the authoritative duplicate-geometry guard.
const PostgresSchema = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS places (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	geom GEOMETRY(POINT) NOT NULL
);

CREATE INDEX IF NOT EXISTS places_geom_idx ON places USING GIST (geom);
CREATE UNIQUE INDEX IF NOT EXISTS places_geom_key ON places (geom);
`

// SQLiteSchema creates the places table on an embedded SQLite database.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS places (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	longitude REAL NOT NULL,
	latitude REAL NOT NULL,
	srid INTEGER NOT NULL,
	UNIQUE (srid, longitude, latitude)
);
`
