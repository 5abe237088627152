package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	server "yisu_backoffice/internal/adapters/http_server"
	"yisu_backoffice/internal/adapters/observability"
	redisad "yisu_backoffice/internal/adapters/redis"
	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
	"yisu_backoffice/internal/shared"
	"yisu_backoffice/internal/storage/memory"
	mysqlrepo "yisu_backoffice/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogFile)

	observability.Serve()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// storage
	var (
		hotels domain.HotelRepository
		users  domain.UserRepository
	)
	switch cfg.Store {
	case "mysql":
		if err := mysqlrepo.Migrate(cfg.MigrationsPath, cfg.MySQLDSN); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		repo := mysqlrepo.New(db)
		if err := repo.SeedUsers(ctx, cfg.SeedPassword); err != nil {
			log.Fatal().Err(err).Msg("seed accounts failed")
		}
		hotels, users = repo, repo
	case "memory":
		st := memory.New()
		if err := st.Seed(cfg.SeedPassword); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		log.Info().Msg("using in-memory store with demo data")
		hotels, users = st, st
	default:
		log.Fatal().Str("store", cfg.Store).Msg("unknown STORE, want memory or mysql")
	}

	// cache
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB))
	} else {
		cache = memory.NewCache(cfg.CacheTTL)
	}
	cat := app.NewCatalog(hotels, users, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{C: cat, T: server.NewTokens(cfg.RequireJWTSecret(), cfg.TokenTTL)})

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("API listening")
	if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
