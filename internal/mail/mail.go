// Package mail delivers account mail. The SMTP integration is deliberately
// thin: the queue worker renders and "sends" by logging, which is how the
// service runs outside production.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

const resetSubject = "Reset Password"

// ResetBody renders the reset-code mail body. The code expires 15 minutes
// after it was issued.
func ResetBody(displayName, code string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nUse the code below to reset your password. It expires in 15 minutes.\n\n    %s\n\nIf you did not request a reset, you can ignore this mail.\n",
		displayName, code,
	)
}

// LogMailer implements auth.Mailer by writing the rendered mail to the log.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer builds a LogMailer on top of the service logger.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// SendResetCode logs the reset mail instead of sending it.
func (m *LogMailer) SendResetCode(ctx context.Context, toEmail, code, displayName string) error {
	m.log.Info().
		Str("to", toEmail).
		Str("subject", resetSubject).
		Str("body", ResetBody(displayName, code)).
		Msg("reset mail (log only; configure SMTP for real delivery)")
	return nil
}
