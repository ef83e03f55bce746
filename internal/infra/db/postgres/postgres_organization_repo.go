package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.OrganizationRepository = (*PostgresOrganizationRepo)(nil)

type PostgresOrganizationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrganizationRepo(pool *pgxpool.Pool) *PostgresOrganizationRepo {
	return &PostgresOrganizationRepo{pool: pool}
}

func (r *PostgresOrganizationRepo) Save(ctx context.Context, o *model.Organization) error {
	const sql = `
INSERT INTO organizations (id, name, description, org_type, industry, from_real, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET name        = EXCLUDED.name,
      description = EXCLUDED.description,
      org_type    = EXCLUDED.org_type,
      industry    = EXCLUDED.industry,
      from_real   = EXCLUDED.from_real,
      updated_at  = EXCLUDED.updated_at;
`
	_, err := r.pool.Exec(ctx, sql,
		o.ID, o.Name, o.Description, o.Type, o.Industry, o.FromReal, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("Save organization: %w", err)
	}
	return nil
}

func (r *PostgresOrganizationRepo) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	const sql = `
SELECT id, name, description, org_type, industry, from_real, created_at, updated_at
  FROM organizations
 WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, sql, id)
	var o model.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &o.Type, &o.Industry, &o.FromReal, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID organization: %w", err)
	}
	return &o, nil
}

func (r *PostgresOrganizationRepo) List(ctx context.Context) ([]*model.Organization, error) {
	const sql = `
SELECT id, name, description, org_type, industry, from_real, created_at, updated_at
  FROM organizations
 ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("List organizations: %w", err)
	}
	defer rows.Close()
	var out []*model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.Type, &o.Industry, &o.FromReal, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (r *PostgresOrganizationRepo) Delete(ctx context.Context, id string) error {
	const sql = `DELETE FROM organizations WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("Delete organization: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
