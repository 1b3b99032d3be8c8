package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"crewbase.io/internal/auth"
)

type userStore struct{ db *sql.DB }

const userColumns = `id, email, password_hash, first_name, last_name, avatar, role,
	hashed_refresh_token, reset_code, reset_code_issued_at, created_at, updated_at`

func (s *userStore) Create(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, email, password_hash, first_name, last_name, avatar, role, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Avatar, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrConflict
		}
		return err
	}
	return nil
}

func (s *userStore) Find(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *userStore) UpdateProfile(ctx context.Context, userID string, upd auth.ProfileUpdate) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		update users set
			first_name=coalesce($2, first_name),
			last_name=coalesce($3, last_name),
			avatar=coalesce($4, avatar),
			updated_at=now()
		where id=$1
		returning `+userColumns,
		userID, upd.FirstName, upd.LastName, upd.Avatar,
	)
	return scanUser(row)
}

func (s *userStore) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set password_hash=$2, updated_at=now() where id=$1`,
		userID, passwordHash,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *userStore) UpdateRefreshTokenHash(ctx context.Context, userID string, hash *string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set hashed_refresh_token=$2, updated_at=now() where id=$1`,
		userID, hash,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *userStore) UpdateResetCode(ctx context.Context, userID string, code *string, issuedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update users set reset_code=$2, reset_code_issued_at=$3, updated_at=now() where id=$1`,
		userID, code, issuedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Avatar, &u.Role,
		&u.HashedRefreshToken, &u.ResetCode, &u.ResetCodeIssuedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}
