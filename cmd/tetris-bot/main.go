// Command tetris-bot plays headless games against a running server. Each
// player dials /ws, plays one game at a time through the local board
// simulation, and submits its score when the game ends.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mptetris/tetris-server/internal/client"
	"github.com/mptetris/tetris-server/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadBot()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Players; i++ {
		nick := cfg.Nickname
		if cfg.Players > 1 {
			nick = fmt.Sprintf("%s%d", cfg.Nickname, i+1)
		}
		seed := cfg.Seed
		if seed != 0 {
			seed += int64(i)
		}
		eg.Go(func() error { return play(ctx, cfg, nick, seed) })
	}
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot exited")
	}
}

func play(ctx context.Context, cfg config.Bot, nick string, seed int64) error {
	logger := log.With().Str("player", nick).Logger()
	for n := 0; n < cfg.Games; n++ {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		c, err := client.Dial(dialCtx, cfg.ServerURL)
		cancel()
		if err != nil {
			return err
		}
		logger.Info().Str("conn", c.ID()).Int("threshold", c.Welcome.Threshold).Msg("connected")

		p := client.NewPlayer(c, client.PlayerOptions{
			Nickname: nick,
			Mode:     cfg.Mode,
			Secret:   cfg.Secret,
			Seed:     seed,
			Think:    cfg.Think,
		})
		res, err := p.Play(ctx)
		c.Close()
		switch {
		case errors.Is(err, client.ErrNoResult):
			logger.Warn().Msg("score submission was not acknowledged")
		case err != nil:
			return err
		default:
			logger.Info().Str("status", res.Status).Int("best", res.Score).Str("mode", res.Mode).Msg("score submitted")
		}
		if seed != 0 {
			seed += 1000
		}
	}
	return nil
}
