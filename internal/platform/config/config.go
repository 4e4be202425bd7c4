package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Thresholds that the product
// never pinned down (rate limits, decay shape, staleness bounds) live here as
// tunables rather than hard-coded business logic.
type Server struct {
	Addr string

	// PostgresURL selects the durable store; empty means in-memory stores
	// (development and tests only — committed submissions then die with the
	// process).
	PostgresURL string

	// RedisURL enables the redis rate-limit store and leaderboard snapshot
	// cache; empty means in-process equivalents.
	RedisURL string
	Redis    RedisConfig

	// KafkaBrokers enables the solve announcement publisher; empty disables it.
	KafkaBrokers []string
	KafkaTopic   string

	JWTSigningKey string

	// AdminToken guards the admin endpoints; empty disables them entirely.
	AdminToken string

	// SubmitLimit submissions per SubmitWindow per team, sliding window.
	SubmitLimit  int
	SubmitWindow time.Duration

	// SubmitDeadline bounds a single submission's processing time.
	SubmitDeadline time.Duration

	// DecayFloor is the minimum fraction of a challenge's base value that
	// decay may reach; DecayRate controls how fast value falls per solve.
	DecayFloor float64
	DecayRate  float64

	// LeaderboardCacheTTL bounds staleness of the redis standings snapshot.
	LeaderboardCacheTTL time.Duration
}

// RedisConfig tunes the shared redis client.
type RedisConfig struct {
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                envOr("CTFBOT_ADDR", ":8080"),
		PostgresURL:         os.Getenv("CTFBOT_POSTGRES_URL"),
		RedisURL:            os.Getenv("CTFBOT_REDIS_URL"),
		KafkaTopic:          envOr("CTFBOT_KAFKA_TOPIC", "ctfbot.solves"),
		JWTSigningKey:       envOr("CTFBOT_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminToken:          os.Getenv("CTFBOT_ADMIN_TOKEN"),
		SubmitLimit:         envOrInt("CTFBOT_SUBMIT_LIMIT", 5),
		SubmitWindow:        envOrDuration("CTFBOT_SUBMIT_WINDOW", time.Minute),
		SubmitDeadline:      envOrDuration("CTFBOT_SUBMIT_DEADLINE", 5*time.Second),
		DecayFloor:          envOrFloat("CTFBOT_DECAY_FLOOR", 0.2),
		DecayRate:           envOrFloat("CTFBOT_DECAY_RATE", 15),
		LeaderboardCacheTTL: envOrDuration("CTFBOT_LEADERBOARD_CACHE_TTL", 5*time.Second),
		Redis: RedisConfig{
			PoolSize:     envOrInt("CTFBOT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envOrInt("CTFBOT_REDIS_MIN_IDLE", 2),
			DialTimeout:  envOrDuration("CTFBOT_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envOrDuration("CTFBOT_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envOrDuration("CTFBOT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
	if brokers := os.Getenv("CTFBOT_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
