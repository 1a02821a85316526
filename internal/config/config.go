// internal/config/config.go
//
// Environment-driven configuration for the server and the headless bot.
// main loads .env (godotenv) first, so values here may come from either.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	LogLevel     string
	LogPretty    bool
	ClientOrigin string

	Store  string // "sqlite" | "memory"
	DBPath string

	ScoreSecret string
	Ceilings    map[string]int
	Slack       int
	RankLimit   int
	LegacyMode  string

	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	JWTTTL            time.Duration

	ClearThreshold int
	GridHeight     int
	GridWidth      int
	Fanout         string
	SelfBoom       bool

	RanksRate float64 // requests per second per IP
	ChatRate  float64 // messages per second per connection
}

// Load reads the process environment.
func Load() (Config, error) {
	c := Config{
		Port:         getEnv("PORT", "3000"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    envBool("LOG_PRETTY", false),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		Store:  strings.ToLower(getEnv("STORE", "sqlite")),
		DBPath: getEnv("DB_PATH", "./data/ranks.db"),

		ScoreSecret: getEnv("SCORE_SECRET", "dev_score_secret"),
		Slack:       envInt("ANOMALY_SLACK", 5000),
		RankLimit:   envInt("LEADERBOARD_LIMIT", 20),
		LegacyMode:  getEnv("LEGACY_MODE", "MP"),

		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTTTL:            time.Duration(envInt("JWT_EXPIRES_HOURS", 12)) * time.Hour,

		ClearThreshold: envInt("CLEAR_THRESHOLD", 60),
		GridHeight:     envInt("GRID_HEIGHT", 20),
		GridWidth:      envInt("GRID_WIDTH", 12),
		Fanout:         getEnv("FANOUT", "full"),
		SelfBoom:       envBool("SELF_BOOM", false),

		RanksRate: envFloat("RANKS_RATE", 2),
		ChatRate:  envFloat("CHAT_RATE", 3),
	}

	var err error
	if c.Ceilings, err = ParseCeilings(getEnv("SCORE_CEILINGS", "Normal=50000,MP=1000000")); err != nil {
		return c, err
	}
	if _, ok := c.Ceilings[c.LegacyMode]; !ok {
		return c, fmt.Errorf("LEGACY_MODE %q is not listed in SCORE_CEILINGS", c.LegacyMode)
	}
	if c.Store != "sqlite" && c.Store != "memory" {
		return c, fmt.Errorf("STORE must be sqlite or memory, got %q", c.Store)
	}
	if c.ClearThreshold <= 0 || c.GridHeight < 4 || c.GridWidth < 4 {
		return c, fmt.Errorf("CLEAR_THRESHOLD must be positive and the grid at least 4x4")
	}
	return c, nil
}

// ParseCeilings reads "Mode=ceiling,Mode=ceiling".
func ParseCeilings(s string) (map[string]int, error) {
	out := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mode, v, ok := strings.Cut(part, "=")
		mode = strings.TrimSpace(mode)
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if !ok || mode == "" || err != nil || n < 0 {
			return nil, fmt.Errorf("bad score ceiling %q", part)
		}
		out[mode] = n
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no score ceilings configured")
	}
	return out, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
