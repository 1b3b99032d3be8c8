package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"crewbase.io/internal/auth"
)

// Worker consumes mail tasks from Redis and hands them to the mailer.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	mailer auth.Mailer
	log    zerolog.Logger
}

// NewWorker creates an asynq server and registers handlers. Call Run to
// start consuming.
func NewWorker(redisOpt asynq.RedisClientOpt, mailer auth.Mailer, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, mailer: mailer, log: log}
	mux.HandleFunc(TypeSendPasswordReset, w.handleSendPasswordReset)
	return w
}

func (w *Worker) handleSendPasswordReset(ctx context.Context, t *asynq.Task) error {
	var p resetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("password reset task payload invalid")
		return err
	}
	return w.mailer.SendResetCode(ctx, p.Email, p.Code, p.DisplayName)
}

// Run blocks until shutdown.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
