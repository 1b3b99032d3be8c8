package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"crewbase.io/internal/auth"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit
// logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Recorder writes audit events enriched with request and principal context.
// Events are security-relevant state changes: logins, token exchanges,
// membership changes.
type Recorder struct {
	log zerolog.Logger
}

// NewRecorder builds a Recorder on top of the service logger.
func NewRecorder(log zerolog.Logger) *Recorder {
	return &Recorder{log: log.With().Str("type", "audit").Logger()}
}

// Event emits one audit entry. Empty event names are dropped.
func (r *Recorder) Event(ctx context.Context, event string, fields map[string]any) {
	event = strings.TrimSpace(event)
	if event == "" {
		return
	}
	e := r.log.Info().Str("event", event)
	if rid := requestIDFromContext(ctx); rid != "" {
		e = e.Str("request_id", rid)
	}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		e = e.Str("user_id", p.ID)
	}
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg("audit")
}
