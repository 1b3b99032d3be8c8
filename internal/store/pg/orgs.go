package pg

import (
	"context"
	"database/sql"
	"errors"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/org"
)

type orgStore struct{ db *sql.DB }

const orgColumns = `id, name, description, owner_id, created_at, updated_at`

// Create inserts the organization and its owner membership in one
// transaction; either both rows land or neither does.
func (s *orgStore) Create(ctx context.Context, o *org.Organization, owner *org.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		insert into organizations(id, name, description, owner_id)
		values($1,$2,$3,$4)`,
		o.ID, o.Name, o.Description, o.OwnerID,
	); err != nil {
		return translateConstraint(err)
	}
	if _, err := tx.ExecContext(ctx, `
		insert into organization_members(id, organization_id, user_id, role)
		values($1,$2,$3,$4)`,
		owner.ID, owner.OrganizationID, owner.UserID, owner.Role,
	); err != nil {
		return translateConstraint(err)
	}
	return tx.Commit()
}

func (s *orgStore) Find(ctx context.Context, id string) (*org.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+orgColumns+` from organizations where id=$1`, id)
	return scanOrg(row)
}

func (s *orgStore) List(ctx context.Context) ([]*org.Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+orgColumns+` from organizations order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*org.Organization
	for rows.Next() {
		var o org.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.OwnerID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *orgStore) Update(ctx context.Context, id string, upd org.Update) (*org.Organization, error) {
	row := s.db.QueryRowContext(ctx, `
		update organizations
		set name = coalesce($2, name),
		    description = coalesce($3, description),
		    updated_at = now()
		where id=$1
		returning `+orgColumns,
		id, upd.Name, upd.Description,
	)
	return scanOrg(row)
}

func (s *orgStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from organizations where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *orgStore) AddMember(ctx context.Context, m *org.Member) error {
	_, err := s.db.ExecContext(ctx, `
		insert into organization_members(id, organization_id, user_id, role)
		values($1,$2,$3,$4)`,
		m.ID, m.OrganizationID, m.UserID, m.Role,
	)
	if err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (s *orgStore) FindMember(ctx context.Context, orgID, userID string) (*org.Member, error) {
	var m org.Member
	err := s.db.QueryRowContext(ctx, `
		select id, organization_id, user_id, role, joined_at
		from organization_members
		where organization_id=$1 and user_id=$2`,
		orgID, userID,
	).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *orgStore) ListMembers(ctx context.Context, orgID string) ([]org.MemberDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		select m.id, m.organization_id, m.user_id, m.role, m.joined_at,
		       u.email, u.first_name, u.last_name
		from organization_members m
		join users u on u.id = m.user_id
		where m.organization_id=$1
		order by m.joined_at`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []org.MemberDetail
	for rows.Next() {
		var d org.MemberDetail
		if err := rows.Scan(
			&d.ID, &d.OrganizationID, &d.UserID, &d.Role, &d.JoinedAt,
			&d.Email, &d.FirstName, &d.LastName,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *orgStore) UpdateMemberRole(ctx context.Context, orgID, userID string, role auth.OrgRole) error {
	res, err := s.db.ExecContext(ctx, `
		update organization_members set role=$3
		where organization_id=$1 and user_id=$2`,
		orgID, userID, role,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *orgStore) RemoveMember(ctx context.Context, orgID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from organization_members
		where organization_id=$1 and user_id=$2`,
		orgID, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *orgStore) CountOwners(ctx context.Context, orgID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		select count(*) from organization_members
		where organization_id=$1 and role=$2`,
		orgID, auth.OrgRoleOwner,
	).Scan(&n)
	return n, err
}

func scanOrg(row *sql.Row) (*org.Organization, error) {
	var o org.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.OwnerID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func translateConstraint(err error) error {
	pgErr, ok := maybePgError(err)
	if !ok {
		return err
	}
	switch pgErr.Code {
	case pgErrUniqueViolation:
		return auth.ErrConflict
	case pgErrForeignKeyViolation:
		return auth.ErrNotFound
	}
	return err
}
