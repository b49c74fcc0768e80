package main

import (
	"context"
	"flag"
	"os"

	"geoplaces-api/internal/config"
	"geoplaces-api/internal/geo"
	"geoplaces-api/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	configPath := flag.String("config", "configs", "Directory holding app.env")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if *file == "" {
		log.Error().Msg("--file flag is required")
		os.Exit(1)
	}
	if cfg.DBDriver != "postgres" {
		log.Fatal().Str("driver", cfg.DBDriver).Msg("importer only supports the postgres driver")
	}

	normalizer, err := geo.NewNormalizer(cfg.DefaultSRID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DEFAULT_SRID")
	}

	log.Info().Str("file", *file).Msg("starting import")

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open file")
	}
	defer f.Close()

	records, err := parseCSV(f, normalizer)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse CSV")
	}
	log.Info().Int("records", len(records)).Msg("parsed records")

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close(ctx)

	inserted, err := importRecords(ctx, conn, records)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	log.Info().
		Int64("inserted", inserted).
		Int64("skipped_duplicates", int64(len(records))-inserted).
		Msg("import finished")
}
