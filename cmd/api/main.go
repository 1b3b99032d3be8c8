package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"crewbase.io/internal/audit"
	"crewbase.io/internal/auth"
	"crewbase.io/internal/config"
	"crewbase.io/internal/httpapi"
	"crewbase.io/internal/mail"
	"crewbase.io/internal/obs"
	"crewbase.io/internal/org"
	"crewbase.io/internal/project"
	"crewbase.io/internal/queue"
	"crewbase.io/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	log := obs.NewLogger(cfg.Log.Level, cfg.Log.Pretty)

	obs.Init()
	obs.InitBuildInfo(version, commit)

	store, err := pg.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer store.Close()

	ctx := context.Background()

	// Redis is optional: without it the reset mail is logged synchronously
	// instead of dispatched through the queue.
	var redisClient *redis.Client
	var mailer auth.Mailer = mail.NewLogMailer(log)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; falling back to log mailer")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
			enq := queue.NewEnqueuer(asynq.RedisClientOpt{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}, log)
			defer enq.Close()
			mailer = enq
		}
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret,
		auth.WithIssuer(cfg.JWT.Issuer),
		auth.WithAccessTTL(cfg.JWT.AccessTTL),
		auth.WithRefreshTTL(cfg.JWT.RefreshTTL),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build token issuer")
	}

	authSvc, err := auth.NewService(store, tokens, auth.WithMailer(mailer), auth.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("build auth service")
	}
	engine, err := auth.NewEngine(store)
	if err != nil {
		log.Fatal().Err(err).Msg("build authorization engine")
	}
	orgSvc, err := org.NewService(store.Orgs(), store.Users(ctx), org.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("build org service")
	}
	projSvc, err := project.NewService(store.Projects())
	if err != nil {
		log.Fatal().Err(err).Msg("build project service")
	}

	api, err := httpapi.New(httpapi.Config{
		Auth:     authSvc,
		Tokens:   tokens,
		Engine:   engine,
		Orgs:     orgSvc,
		Projects: projSvc,
		Audit:    audit.NewRecorder(log),
		Ready:    httpapi.ReadyProbe{DB: store.DB(), Redis: redisClient},
		Version:  version,
		Log:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build http api")
	}

	// RequestID must wrap Logging so the access log line carries the id.
	handler := httpapi.Logging(log)(api.Handler())
	handler = httpapi.RequestID(handler)
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.CORS(handler)
	handler = httpapi.MaxBodyBytes(handler, 1<<20)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("version", version).Msg("starting crewbase-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("stopped")
}
