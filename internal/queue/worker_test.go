package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type captureMailer struct {
	email, code, name string
	calls             int
}

func (m *captureMailer) SendResetCode(_ context.Context, toEmail, code, displayName string) error {
	m.calls++
	m.email, m.code, m.name = toEmail, code, displayName
	return nil
}

func TestHandleSendPasswordReset(t *testing.T) {
	mailer := &captureMailer{}
	w := &Worker{mailer: mailer, log: zerolog.Nop()}

	payload, err := json.Marshal(resetPayload{
		Email:       "a@b.c",
		Code:        "XK92QP",
		DisplayName: "Ada",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	task := asynq.NewTask(TypeSendPasswordReset, payload)
	if err := w.handleSendPasswordReset(context.Background(), task); err != nil {
		t.Fatalf("handle task: %v", err)
	}
	if mailer.calls != 1 {
		t.Fatalf("expected one send, got %d", mailer.calls)
	}
	if mailer.email != "a@b.c" || mailer.code != "XK92QP" || mailer.name != "Ada" {
		t.Fatalf("payload not carried through: %+v", mailer)
	}
}

func TestHandleSendPasswordResetBadPayload(t *testing.T) {
	mailer := &captureMailer{}
	w := &Worker{mailer: mailer, log: zerolog.Nop()}

	task := asynq.NewTask(TypeSendPasswordReset, []byte("{not json"))
	if err := w.handleSendPasswordReset(context.Background(), task); err == nil {
		t.Fatal("expected error for invalid payload")
	}
	if mailer.calls != 0 {
		t.Fatalf("mailer should not be called, got %d calls", mailer.calls)
	}
}
