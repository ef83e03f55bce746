package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.GoalRepository = (*PostgresGoalRepo)(nil)

type PostgresGoalRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresGoalRepo(pool *pgxpool.Pool) *PostgresGoalRepo {
	return &PostgresGoalRepo{pool: pool}
}

func (r *PostgresGoalRepo) Save(ctx context.Context, g *model.Goal) error {
	const sql = `
INSERT INTO goals (id, name, objective, success_criteria, initial_prompt, max_turns, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET name             = EXCLUDED.name,
      objective        = EXCLUDED.objective,
      success_criteria = EXCLUDED.success_criteria,
      initial_prompt   = EXCLUDED.initial_prompt,
      max_turns        = EXCLUDED.max_turns,
      updated_at       = EXCLUDED.updated_at;
`
	_, err := r.pool.Exec(ctx, sql,
		g.ID, g.Name, g.Objective, g.SuccessCriteria, g.InitialPrompt, g.MaxTurns, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Save goal: %w", err)
	}
	return nil
}

func (r *PostgresGoalRepo) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	const sql = `
SELECT id, name, objective, success_criteria, initial_prompt, max_turns, created_at, updated_at
  FROM goals
 WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, sql, id)
	var g model.Goal
	if err := row.Scan(&g.ID, &g.Name, &g.Objective, &g.SuccessCriteria, &g.InitialPrompt, &g.MaxTurns, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID goal: %w", err)
	}
	return &g, nil
}

func (r *PostgresGoalRepo) List(ctx context.Context) ([]*model.Goal, error) {
	const sql = `
SELECT id, name, objective, success_criteria, initial_prompt, max_turns, created_at, updated_at
  FROM goals
 ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("List goals: %w", err)
	}
	defer rows.Close()
	var out []*model.Goal
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.Objective, &g.SuccessCriteria, &g.InitialPrompt, &g.MaxTurns, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (r *PostgresGoalRepo) Delete(ctx context.Context, id string) error {
	const sql = `DELETE FROM goals WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("Delete goal: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
