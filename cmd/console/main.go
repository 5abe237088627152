package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"yisu_backoffice/internal/adapters/backend"
	"yisu_backoffice/internal/adapters/console"
	"yisu_backoffice/internal/adapters/observability"
	redisad "yisu_backoffice/internal/adapters/redis"
	"yisu_backoffice/internal/adapters/session"
	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
	"yisu_backoffice/internal/shared"
)

func main() {
	cfg := shared.Load()

	// the prompt owns stdout, logs go to a rotating file
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "yisu-console.log")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, logFile)

	observability.Serve()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store domain.SessionStore
	switch cfg.SessionStore {
	case "redis":
		store = redisad.NewTokenStore(redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB), cfg.SessionProfile)
	case "memory":
		store = session.NewMemoryStore()
	default:
		store = session.NewFileStore(cfg.SessionFile)
	}
	sess := session.New(store)
	if err := sess.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("restore session failed, starting logged out")
	}

	out := colorable.NewColorableStdout()
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	notify := console.NewNotifier(out, color)

	gw := backend.New(cfg.BackendBase, sess, cfg.RequestTimeout, cfg.RequestRPS)
	dir := app.NewDirectory(gw, notify, cfg.PageSize)
	shell := console.NewShell(console.Deps{
		Auth:     app.NewAuthService(gw, sess),
		Dir:      dir,
		Workflow: app.NewWorkflow(gw, dir, notify, app.WorkflowOptions{ClearReasonOnExit: cfg.ClearReasonOnExit}),
		Merchant: app.NewMerchantHotels(gw, notify),
	}, out, color)
	sess.OnUnauthorized(shell.SessionExpired)

	log.Info().Str("backend", cfg.BackendBase).Str("session_store", cfg.SessionStore).Msg("console starting")
	if err := shell.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("console stopped")
		os.Exit(1)
	}
}
