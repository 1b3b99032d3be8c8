package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/project"
)

type projectStore struct{ db *sql.DB }

const projectColumns = `id, organization_id, name, description, created_by_id,
	created_at, updated_at, deleted_at`

func (s *projectStore) Create(ctx context.Context, p *project.Project) error {
	_, err := s.db.ExecContext(ctx, `
		insert into projects(id, organization_id, name, description, created_by_id)
		values($1,$2,$3,$4,$5)`,
		p.ID, p.OrganizationID, p.Name, p.Description, p.CreatedByID,
	)
	if err != nil {
		return translateConstraint(err)
	}
	return nil
}

func (s *projectStore) Find(ctx context.Context, id string) (*project.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+projectColumns+` from projects where id=$1 and deleted_at is null`, id)
	return scanProject(row)
}

func (s *projectStore) ListByOrg(ctx context.Context, orgID string) ([]*project.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+projectColumns+` from projects
		where organization_id=$1 and deleted_at is null
		order by created_at`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*project.Project
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(
			&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.CreatedByID,
			&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *projectStore) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update projects set deleted_at=$2, updated_at=now()
		where id=$1 and deleted_at is null`,
		id, deletedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanProject(row *sql.Row) (*project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.CreatedByID,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
