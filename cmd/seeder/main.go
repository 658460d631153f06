package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/vasiliy-maslov/class-marketplace/internal/config"
	"github.com/vasiliy-maslov/class-marketplace/internal/db"
	"github.com/vasiliy-maslov/class-marketplace/internal/seed"
)

func main() {
	destroy := flag.Bool("d", false, "delete all orders, products and users without importing fixtures")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "seeder").Logger()

	if err := run(*destroy); err != nil {
		log.Error().Err(err).Msg("Seeding failed")
		os.Exit(1)
	}
}

func run(destroy bool) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	if err := db.Migrate(cfg.Postgres); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	fixtures, err := seed.LoadFixtures()
	if err != nil {
		return err
	}
	seeder := seed.NewSeeder(pg.SQLX(), fixtures, bcrypt.DefaultCost)

	if destroy {
		if err := seeder.Destroy(ctx); err != nil {
			return err
		}
		log.Warn().Msg("Data Destroyed")
		return nil
	}

	result, err := seeder.Import(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("users", result.Users).Int("products", result.Products).Msg("Data Imported")
	return nil
}
