package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/org"
	"crewbase.io/internal/project"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store implements the auth, org and project persistence interfaces on
// PostgreSQL via database/sql and the pgx driver.
type Store struct {
	db *sql.DB
}

var (
	_ auth.Store               = (*Store)(nil)
	_ auth.MembershipDirectory = (*Store)(nil)
	_ org.Store                = (*orgStore)(nil)
	_ project.Store            = (*projectStore)(nil)
)

// Open connects to PostgreSQL and tunes the connection pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle (used by tests with sqlmock).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Ping verifies the connection, backing the readiness probe.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Users returns the user directory.
func (s *Store) Users(context.Context) auth.UserStore { return &userStore{db: s.db} }

// Orgs returns the organization store.
func (s *Store) Orgs() org.Store { return &orgStore{db: s.db} }

// Projects returns the project store.
func (s *Store) Projects() project.Store { return &projectStore{db: s.db} }

// MemberRole resolves a user's membership role in an organization for
// authorization checks.
func (s *Store) MemberRole(ctx context.Context, orgID, userID string) (auth.OrgRole, error) {
	var role auth.OrgRole
	err := s.db.QueryRowContext(ctx, `
		select role from organization_members
		where organization_id=$1 and user_id=$2`,
		orgID, userID,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", auth.ErrNotFound
		}
		return "", err
	}
	return role, nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
