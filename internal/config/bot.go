package config

import "time"

// Bot configures cmd/tetris-bot.
type Bot struct {
	ServerURL string
	Nickname  string
	Mode      string
	Secret    string
	Players   int
	Games     int
	Seed      int64
	Think     time.Duration
	LogLevel  string
	LogPretty bool
}

func LoadBot() Bot {
	return Bot{
		ServerURL: getEnv("BOT_SERVER_URL", "ws://localhost:3000/ws"),
		Nickname:  getEnv("BOT_NICKNAME", "bot"),
		Mode:      getEnv("BOT_MODE", "MP"),
		Secret:    getEnv("SCORE_SECRET", "dev_score_secret"),
		Players:   envInt("BOT_PLAYERS", 1),
		Games:     envInt("BOT_GAMES", 1),
		Seed:      int64(envInt("BOT_SEED", 0)),
		Think:     time.Duration(envInt("BOT_THINK_MS", 150)) * time.Millisecond,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: envBool("LOG_PRETTY", true),
	}
}
