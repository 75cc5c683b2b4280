package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suPer8Hu/wyr-platform/internal/auth"
	"github.com/suPer8Hu/wyr-platform/internal/config"
	"github.com/suPer8Hu/wyr-platform/internal/db"
	"github.com/suPer8Hu/wyr-platform/internal/game"
	"github.com/suPer8Hu/wyr-platform/internal/generator"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi"
	"github.com/suPer8Hu/wyr-platform/internal/httpapi/handlers"
	"github.com/suPer8Hu/wyr-platform/internal/models"
	"github.com/suPer8Hu/wyr-platform/internal/store/rabbitmq"
	"github.com/suPer8Hu/wyr-platform/internal/store/redisstore"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb := db.Connect(cfg.DBDSN)
	if err := db.Migrate(gdb, append(models.All(), game.Models()...)...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if cfg.SeedOnStart {
		res, err := game.Seed(ctx, gdb)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("[seed] themes_created=%d questions_created=%d", res.ThemesCreated, res.QuestionsCreated)
	}

	var cache auth.SessionCache
	if cfg.RedisAddr != "" {
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rds.Ping(ctx); err != nil {
			log.Printf("[redis] unavailable, sessions served from db addr=%s err=%v", cfg.RedisAddr, err)
			_ = rds.Close()
		} else {
			cache = rds
			defer rds.Close()
		}
	}
	authSvc := auth.NewService(gdb, cfg.JWTSecret, cfg.TokenTTL, cache)

	gen, err := generator.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("generator: %v", err)
	}
	gameSvc := game.NewService(game.NewRepo(gdb), gen)

	var pub handlers.JobPublisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("[rabbitmq] async generation disabled err=%v", err)
		} else {
			pub = p
			defer p.Close()
		}
	}

	r := httpapi.NewRouter(handlers.NewHandler(gameSvc, authSvc, pub), cfg.CORSOrigins)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("[server] listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown err=%v", err)
	}
}
