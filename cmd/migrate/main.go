package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"geoplaces-api/internal/config"
	"geoplaces-api/internal/logging"
	"geoplaces-api/internal/repository"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "configs", "Directory holding app.env")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [--config dir] up\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || flag.Arg(0) != "up" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.DBDriver != "postgres" {
		log.Fatal().Str("driver", cfg.DBDriver).Msg("sqlite databases create their schema on open")
	}

	db, err := sql.Open("postgres", cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open db")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := up(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("schema is up to date")
}

func up(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, repository.PostgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
