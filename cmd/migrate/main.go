// migrate aplica las migraciones embebidas (goose) sobre la base configurada.
//
// Uso: go run ./cmd/migrate -cmd up
//
//	go run ./cmd/migrate -cmd down
//	go run ./cmd/migrate -cmd status
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

func main() {
	command := flag.String("cmd", "up", "comando goose: up, down, status, version, redo, reset")
	timeout := flag.Duration("timeout", 2*time.Minute, "tiempo máximo de ejecución")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name + "-migrate"})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, *command, flag.Args()...); err != nil {
		log.Error().Err(err).Str("cmd", *command).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", *command).Msg("migración completada")
}
