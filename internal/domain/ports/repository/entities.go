package repository

import (
	"context"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
)

// PersonaRepository persists personas. Save upserts by ID.
type PersonaRepository interface {
	Save(ctx context.Context, p *model.Persona) error
	FindByID(ctx context.Context, id string) (*model.Persona, error)
	List(ctx context.Context) ([]*model.Persona, error)
	Delete(ctx context.Context, id string) error
}

// GoalRepository persists goals. Save upserts by ID.
type GoalRepository interface {
	Save(ctx context.Context, g *model.Goal) error
	FindByID(ctx context.Context, id string) (*model.Goal, error)
	List(ctx context.Context) ([]*model.Goal, error)
	Delete(ctx context.Context, id string) error
}

// OrganizationRepository persists organizations. Save upserts by ID.
type OrganizationRepository interface {
	Save(ctx context.Context, o *model.Organization) error
	FindByID(ctx context.Context, id string) (*model.Organization, error)
	List(ctx context.Context) ([]*model.Organization, error)
	Delete(ctx context.Context, id string) error
}
