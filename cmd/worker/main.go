package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suPer8Hu/wyr-platform/internal/config"
	"github.com/suPer8Hu/wyr-platform/internal/db"
	"github.com/suPer8Hu/wyr-platform/internal/game"
	"github.com/suPer8Hu/wyr-platform/internal/generator"
	"github.com/suPer8Hu/wyr-platform/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()
	if cfg.RabbitURL == "" {
		log.Fatalf("RABBIT_URL is required for the worker")
	}

	gdb := db.Connect(cfg.DBDSN)
	if err := db.Migrate(gdb, game.Models()...); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := generator.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("generator: %v", err)
	}
	svc := game.NewService(game.NewRepo(gdb), gen)

	handle := func(ctx context.Context, jobID string) error {
		start := time.Now()
		err := svc.RunGenerationJob(ctx, jobID)
		if err == nil {
			log.Printf("[worker] job done job=%s cost=%s", jobID, time.Since(start))
		}
		return err
	}

	// Reconnect until shutdown; the broker may restart under us.
	for {
		err := rabbitmq.Consume(ctx, cfg.RabbitURL, cfg.RabbitQueue, cfg.WorkerConcurrency, handle)
		if ctx.Err() != nil {
			return
		}
		log.Printf("[worker] consumer stopped err=%v, reconnecting", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
