package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"crewbase.io/internal/config"
	"crewbase.io/internal/mail"
	"crewbase.io/internal/obs"
	"crewbase.io/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	log := obs.NewLogger(cfg.Log.Level, cfg.Log.Pretty)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	worker := queue.NewWorker(redisOpt, mail.NewLogMailer(log), log)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Info().Msg("shutting down worker")
		worker.Shutdown()
	}()

	log.Info().Str("redis", cfg.Redis.Addr).Msg("starting crewbase-worker")
	if err := worker.Run(); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
