package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"yisu_backoffice/internal/adapters/backend"
	"yisu_backoffice/internal/adapters/observability"
	"yisu_backoffice/internal/adapters/session"
	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
	"yisu_backoffice/internal/fixtures"
	"yisu_backoffice/internal/shared"
)

// seeder submits the demo hotels through the merchant API of a running
// backend, the way a merchant would.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogFile)

	log.Info().
		Str("base", cfg.BackendBase).
		Int("workers", cfg.SeedWorkers).
		Str("email", cfg.SeedEmail).
		Msg("seeder starting")

	sess := session.New(nil)
	gw := backend.New(cfg.BackendBase, sess, cfg.RequestTimeout, cfg.RequestRPS)
	auth := app.NewAuthService(gw, sess)
	if _, err := auth.Login(ctx, cfg.SeedEmail, cfg.SeedPassword); err != nil {
		log.Fatal().Err(err).Msg("login failed")
	}
	if _, err := auth.RequireRole(ctx, domain.RoleMerchant); err != nil {
		log.Fatal().Err(err).Msg("seed account is not a merchant")
	}

	workers := max(cfg.SeedWorkers, 1)
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)

	for _, h := range fixtures.Hotels() {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			h.ID = 0
			for i := range h.Rooms {
				h.Rooms[i].ID = 0
			}
			saved, err := gw.CreateHotel(ctx, h)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("name", h.Name).Str("reason", domain.UserMessage(err)).Err(err).Msg("create failed")
				return
			}
			log.Info().Int64("id", saved.ID).Str("name", saved.Name).Msg("hotel submitted")
		}(h)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Fatal().Int32("failed", n).Msg("seeding finished with failures")
	}
	log.Info().Msg("seeding completed")
}
