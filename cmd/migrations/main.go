package main

import (
	"context"
	"flag"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/pollster/internal/adapters/repository/mongodb"
	"github.com/vncsmyrnk/pollster/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollster/internal/config"
	"github.com/vncsmyrnk/pollster/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "migration direction for postgres: up or down")
	dir := flag.String("dir", filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations"), "postgres migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	if *direction != "up" && *direction != "down" {
		log.WithField("direction", *direction).Fatal("direction must be up or down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.ConnString())
		if err != nil {
			log.WithError(err).Fatal("failed to open database")
		}
		defer db.Close()

		applied, err := postgres.ApplyMigrations(ctx, db, *dir, *direction)
		if err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		log.WithField("files", applied).Info("migration files executed successfully")

	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to mongodb")
		}
		defer client.Disconnect(context.Background())

		if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			log.WithError(err).Fatal("failed to create indexes")
		}
		log.Info("indexes created")

	default:
		log.WithField("driver", cfg.DBDriver).Info("nothing to migrate")
	}
}
