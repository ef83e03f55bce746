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
var _ repository.PersonaRepository = (*PostgresPersonaRepo)(nil)

type PostgresPersonaRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPersonaRepo(pool *pgxpool.Pool) *PostgresPersonaRepo {
	return &PostgresPersonaRepo{pool: pool}
}

func (r *PostgresPersonaRepo) Save(ctx context.Context, p *model.Persona) error {
	const sql = `
INSERT INTO personas (id, name, background, organization_id, tags, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
ON CONFLICT (id) DO UPDATE
  SET name            = EXCLUDED.name,
      background      = EXCLUDED.background,
      organization_id = EXCLUDED.organization_id,
      tags            = EXCLUDED.tags,
      updated_at      = EXCLUDED.updated_at;
`
	_, err := r.pool.Exec(ctx, sql,
		p.ID, p.Name, p.Background, p.OrganizationID, p.Tags, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: organization %s", domain.ErrNotFound, p.OrganizationID)
		}
		return fmt.Errorf("Save persona: %w", err)
	}
	return nil
}

func (r *PostgresPersonaRepo) FindByID(ctx context.Context, id string) (*model.Persona, error) {
	const sql = `
SELECT id, name, background, COALESCE(organization_id, ''), tags, created_at, updated_at
  FROM personas
 WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, sql, id)
	var p model.Persona
	if err := row.Scan(&p.ID, &p.Name, &p.Background, &p.OrganizationID, &p.Tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID persona: %w", err)
	}
	return &p, nil
}

func (r *PostgresPersonaRepo) List(ctx context.Context) ([]*model.Persona, error) {
	const sql = `
SELECT id, name, background, COALESCE(organization_id, ''), tags, created_at, updated_at
  FROM personas
 ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("List personas: %w", err)
	}
	defer rows.Close()
	var out []*model.Persona
	for rows.Next() {
		var p model.Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.Background, &p.OrganizationID, &p.Tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresPersonaRepo) Delete(ctx context.Context, id string) error {
	const sql = `DELETE FROM personas WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("Delete persona: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
