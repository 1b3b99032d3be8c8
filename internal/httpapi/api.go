package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"crewbase.io/internal/audit"
	"crewbase.io/internal/auth"
	"crewbase.io/internal/obs"
	"crewbase.io/internal/org"
	"crewbase.io/internal/project"
)

// ReadyProbe checks the backing services for the readiness endpoint. Nil
// members are skipped, which keeps local runs without Redis green.
type ReadyProbe struct {
	DB    *sql.DB
	Redis *redis.Client
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB != nil {
		if err := rp.DB.PingContext(ctx); err != nil {
			return err
		}
	}
	if rp.Redis != nil {
		if err := rp.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Config wires the HTTP layer to the services behind it.
type Config struct {
	Auth     *auth.Service
	Tokens   *auth.TokenIssuer
	Engine   *auth.Engine
	Orgs     *org.Service
	Projects *project.Service
	Audit    *audit.Recorder
	Ready    ReadyProbe
	Version  string
	Log      zerolog.Logger
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	tokens     *auth.TokenIssuer
	engine     *auth.Engine
	orgs       *org.Service
	projects   *project.Service
	audit      *audit.Recorder
	validate   *validator.Validate
	readyProbe ReadyProbe
	version    string
	log        zerolog.Logger
}

func New(cfg Config) (*API, error) {
	if cfg.Auth == nil || cfg.Tokens == nil || cfg.Engine == nil {
		return nil, errors.New("httpapi: auth service, token issuer and engine are required")
	}
	if cfg.Orgs == nil || cfg.Projects == nil {
		return nil, errors.New("httpapi: org and project services are required")
	}
	a := &API{
		mux:        http.NewServeMux(),
		auth:       cfg.Auth,
		tokens:     cfg.Tokens,
		engine:     cfg.Engine,
		orgs:       cfg.Orgs,
		projects:   cfg.Projects,
		audit:      cfg.Audit,
		validate:   validator.New(),
		readyProbe: cfg.Ready,
		version:    cfg.Version,
		log:        cfg.Log,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/auth/reset-password", a.handleResetRequest)
	a.mux.HandleFunc("/v1/auth/reset-password/redeem", a.handleResetRedeem)
	a.mux.HandleFunc("/v1/auth/change-password", a.handleChangePassword)

	a.mux.HandleFunc("/v1/users/me", a.handleUserProfile)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	a.mux.HandleFunc("/v1/organizations", a.handleOrganizations)
	a.mux.HandleFunc("/v1/organizations/", a.handleOrganizationScoped)

	a.mux.HandleFunc("/v1/projects", a.handleProjects)
	a.mux.HandleFunc("/v1/projects/", a.handleProjectResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler returns the API wrapped with authentication and metrics.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "crewbase-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "crewbase-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// auditEvent records an audit entry when a recorder is configured.
func (a *API) auditEvent(ctx context.Context, event string, fields map[string]any) {
	if a.audit == nil {
		return
	}
	a.audit.Event(ctx, event, fields)
}
