// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	LevelPath        string
	SavePath         string
	SimSpeed         int
	AutoStart        bool
	BaggageLoadTicks int
	QueueOrder       string
	QueueSeed        int64
	RecentEvents     int
	Redis            RedisConfig
	AMQP             AMQPConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	StatsKey string
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type AMQPConfig struct {
	URL   string
	Queue string
}

func (a AMQPConfig) Enabled() bool { return a.URL != "" }

// Load reads .env (if any) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	cfg := Config{
		Port:             envStr("PORT", "4000"),
		LevelPath:        envStr("LEVEL_PATH", "data/levels/demo.json"),
		SavePath:         envStr("SAVE_PATH", ""),
		SimSpeed:         envInt("SIM_SPEED", 1),
		AutoStart:        envBool("AUTO_START", false),
		BaggageLoadTicks: envInt("BAGGAGE_LOAD_TICKS", 3),
		QueueOrder:       strings.ToLower(envStr("QUEUE_ORDER", "random")),
		QueueSeed:        envInt64("QUEUE_SEED", time.Now().UnixNano()),
		RecentEvents:     envInt("RECENT_EVENTS", 20),
		Redis: RedisConfig{
			Addr:     redisAddr(),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
			Channel:  envStr("REDIS_CHANNEL", "boarding.events"),
			StatsKey: envStr("REDIS_STATS_KEY", "boarding:stats"),
		},
		AMQP: AMQPConfig{
			URL:   amqpURL(),
			Queue: envStr("AMQP_QUEUE", "boarding.events"),
		},
	}
	if cfg.SimSpeed < 1 {
		cfg.SimSpeed = 1
	}
	if cfg.SimSpeed > 4 {
		cfg.SimSpeed = 4
	}
	if cfg.BaggageLoadTicks < 1 {
		cfg.BaggageLoadTicks = 1
	}
	if cfg.RecentEvents < 1 {
		cfg.RecentEvents = 20
	}
	return cfg
}

// redisAddr prefers REDIS_ADDR and falls back to REDIS_HOST/REDIS_PORT.
// Redis stays disabled when neither is set.
func redisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		return host + ":" + port
	}
	return ""
}

func amqpURL() string {
	if url := os.Getenv("AMQP_URL"); url != "" {
		return url
	}
	return os.Getenv("RABBITMQ_URL")
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envInt64(k string, d int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return d
}
