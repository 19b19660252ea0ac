package config

import "testing"

func TestDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LEVEL_PATH", "SIM_SPEED", "QUEUE_ORDER", "REDIS_ADDR", "REDIS_HOST", "REDIS_PORT", "AMQP_URL", "RABBITMQ_URL", "BAGGAGE_LOAD_TICKS"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Port != "4000" {
		t.Fatalf("expected default port 4000, got %s", cfg.Port)
	}
	if cfg.SimSpeed != 1 || cfg.BaggageLoadTicks != 3 || cfg.QueueOrder != "random" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Redis.Enabled() || cfg.AMQP.Enabled() {
		t.Fatalf("brokers should be disabled by default")
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SIM_SPEED", "9")
	t.Setenv("QUEUE_ORDER", "Steffen")
	t.Setenv("QUEUE_SEED", "42")
	t.Setenv("AUTO_START", "yes")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("AMQP_URL", "")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")

	cfg := FromEnv()
	if cfg.Port != "8081" || cfg.SimSpeed != 4 || cfg.QueueOrder != "steffen" || cfg.QueueSeed != 42 || !cfg.AutoStart {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Redis.Addr != "cache:6380" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr)
	}
	if cfg.AMQP.URL != "amqp://guest:guest@mq:5672/" || cfg.AMQP.Queue != "boarding.events" {
		t.Fatalf("unexpected amqp config %+v", cfg.AMQP)
	}
}

func TestBadNumbersFallBack(t *testing.T) {
	t.Setenv("SIM_SPEED", "fast")
	t.Setenv("RECENT_EVENTS", "-3")
	cfg := FromEnv()
	if cfg.SimSpeed != 1 || cfg.RecentEvents != 20 {
		t.Fatalf("unexpected fallback %+v", cfg)
	}
}

func TestNewRedisClientDisabled(t *testing.T) {
	if c := NewRedisClient(RedisConfig{}); c != nil {
		t.Fatalf("expected nil client without an address")
	}
}
