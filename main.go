package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mptetris/tetris-server/assets"
	"github.com/mptetris/tetris-server/internal/auth"
	"github.com/mptetris/tetris-server/internal/config"
	"github.com/mptetris/tetris-server/internal/httpserver"
	"github.com/mptetris/tetris-server/internal/hub"
	"github.com/mptetris/tetris-server/internal/leaderboard"
	"github.com/mptetris/tetris-server/internal/settings"
	"github.com/mptetris/tetris-server/internal/storage"
	"github.com/mptetris/tetris-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	var (
		ranks leaderboard.Store
		kv    settings.Store
	)
	switch cfg.Store {
	case "memory":
		ranks, kv = store.NewRanks(), store.NewSettings()
		log.Warn().Msg("using in-memory stores; scores are lost on restart")
	default:
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
		}
		defer db.Close()
		if err := storage.Migrate(db, assets.Migrations(), map[string]string{"LEGACY_MODE": cfg.LegacyMode}); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		ranks, kv = sqlStores(db)
	}

	prefs := settings.New(kv)
	threshold, err := prefs.Threshold(context.Background(), cfg.ClearThreshold)
	if err != nil {
		log.Warn().Err(err).Int("fallback", threshold).Msg("load clear threshold")
	}

	fanout, err := hub.NewFanout(cfg.Fanout)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid FANOUT")
	}

	scores := leaderboard.NewService(ranks, leaderboard.Rules{
		Secret:   cfg.ScoreSecret,
		Ceilings: cfg.Ceilings,
		Slack:    cfg.Slack,
	}, cfg.RankLimit)
	admin := auth.NewAdmin(auth.Config{
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       cfg.JWTSecret,
		TTL:          cfg.JWTTTL,
	})

	h := hub.New(hub.Options{
		Height:    cfg.GridHeight,
		Width:     cfg.GridWidth,
		Threshold: threshold,
		Fanout:    fanout,
		Scores:    scores,
		Settings:  prefs,
		Auth:      admin,
		SelfBoom:  cfg.SelfBoom,
		ChatRate:  rate.Limit(cfg.ChatRate),
	})
	srv := httpserver.New(h, scores, admin, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		DefaultMode:  cfg.LegacyMode,
		RanksRate:    cfg.RanksRate,
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return h.Run(ctx) })
	eg.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("starting tetris-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("shut down")
}

func sqlStores(db *sql.DB) (leaderboard.Store, settings.Store) {
	return leaderboard.NewSQLStore(db), settings.NewSQLStore(db)
}
