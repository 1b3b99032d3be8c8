package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"crewbase.io/internal/auth"
)

const TypeSendPasswordReset = "email:password_reset"

// resetPayload is the JSON carried by a password-reset mail task.
type resetPayload struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// Enqueuer implements auth.Mailer by pushing mail tasks onto Redis for the
// worker process. Delivery failures surface to the caller, which swallows
// them; a lost mail must never fail the reset request.
type Enqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

var _ auth.Mailer = (*Enqueuer)(nil)

// NewEnqueuer connects an asynq client to Redis.
func NewEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *Enqueuer) Close() error { return q.client.Close() }

// SendResetCode enqueues the reset mail task.
func (q *Enqueuer) SendResetCode(ctx context.Context, toEmail, code, displayName string) error {
	payload, _ := json.Marshal(resetPayload{
		Email:       toEmail,
		Code:        code,
		DisplayName: displayName,
	})
	task := asynq.NewTask(TypeSendPasswordReset, payload)
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		q.log.Warn().Err(err).Str("email", toEmail).Msg("enqueue password reset mail failed")
		return err
	}
	return nil
}
