package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	_ "github.com/vncsmyrnk/pollster/docs"
	"github.com/vncsmyrnk/pollster/internal/adapters/broadcast"
	"github.com/vncsmyrnk/pollster/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollster/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollster/internal/adapters/repository/mongodb"
	"github.com/vncsmyrnk/pollster/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollster/internal/config"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
	"github.com/vncsmyrnk/pollster/internal/core/services"
	"github.com/vncsmyrnk/pollster/internal/logger"
)

// @title        Pollster API
// @version      1.0
// @description  Polls, votes, write-in choices and comments with live updates.
// @BasePath     /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer store.close()
	log.WithField("driver", cfg.DBDriver).Info("storage ready")

	hub := broadcast.NewHub(log, cfg.CORSOrigins)
	go hub.Run(ctx)

	var broadcaster ports.Broadcaster = hub
	if cfg.RedisAddr != "" {
		client, err := broadcast.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer client.Close()

		relay := broadcast.NewRedisRelay(client, cfg.RedisChannel, hub, log)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("redis relay stopped, falling back to local delivery")
			}
		}()
		broadcaster = relay
	}

	mutator := services.NewPollMutator(store.polls, broadcaster, services.WithLogger(log))
	auth := services.NewAuthService(store.users, cfg.JWTSecret)

	handler := http.NewHandler(http.RouterConfig{
		PollHandler:    http.NewPollHandler(services.NewPollService(mutator, store.users, cfg.SiteURL), log),
		VoteHandler:    http.NewVoteHandler(services.NewVoteService(mutator), log),
		CommentHandler: http.NewCommentHandler(services.NewCommentService(mutator, store.users), log),
		UserHandler:    http.NewUserHandler(services.NewUserService(store.users), log),
		Auth:           http.Identify(auth, log),
		Socket:         hub,
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         log,
	})
	server := &stdhttp.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown did not complete")
	}
}

type store struct {
	polls ports.PollRepository
	users ports.UserRepository
	close func()
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &store{
			polls: mongodb.NewPollRepository(db, cfg.DBTimeout),
			users: mongodb.NewUserRepository(db, cfg.DBTimeout),
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, err
		}
		return &store{
			polls: postgres.NewPollRepository(db, cfg.DBTimeout),
			users: postgres.NewUserRepository(db, cfg.DBTimeout),
			close: func() { db.Close() },
		}, nil

	case config.DriverMemory:
		return &store{
			polls: memory.NewPollRepository(),
			users: memory.NewUserRepository(),
			close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
}
