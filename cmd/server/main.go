package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabin_boarding/internal/api"
	"cabin_boarding/internal/config"
	"cabin_boarding/internal/game"
	"cabin_boarding/internal/notify"
)

func main() {
	cfg := config.Load()

	level, err := game.LoadLevel(cfg.LevelPath)
	if err != nil {
		log.Fatalf("failed to load level: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engine *game.Engine
	hub := notify.NewHub(func() any { return engine.State() })
	go hub.Run(ctx)
	listeners := []game.Listener{hub}

	if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		pub := notify.NewRedisPublisher(rdb, cfg.Redis.Channel, cfg.Redis.StatsKey)
		if err := pub.ResetStats(ctx); err != nil {
			log.Printf("redis: reset stats: %v", err)
		}
		go pub.Run(ctx)
		listeners = append(listeners, pub)
		log.Printf("publishing events to redis channel %s", cfg.Redis.Channel)
	}

	if cfg.AMQP.Enabled() {
		pub, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Printf("event queue disabled: %v", err)
		} else {
			defer pub.Close()
			go pub.Run(ctx)
			listeners = append(listeners, pub)
			log.Printf("publishing events to queue %s", cfg.AMQP.Queue)
		}
	}

	engine, err = game.NewEngine(level, game.EngineOptions{
		BaggageLoadTicks: cfg.BaggageLoadTicks,
		QueueOrder:       cfg.QueueOrder,
		QueueSeed:        cfg.QueueSeed,
		RecentEvents:     cfg.RecentEvents,
		SavePath:         cfg.SavePath,
	}, listeners...)
	if err != nil {
		log.Fatalf("failed to build level %s: %v", cfg.LevelPath, err)
	}
	log.Printf("loaded level %q from %s", level.Name, cfg.LevelPath)

	if cfg.AutoStart {
		engine.StartSim(cfg.SimSpeed)
	} else {
		engine.SetSpeed(cfg.SimSpeed)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: api.New(engine, hub)}
	go func() {
		<-ctx.Done()
		engine.PauseSim()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Server listening on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	hub.Wait()
}
