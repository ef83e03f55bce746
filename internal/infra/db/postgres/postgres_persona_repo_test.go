//go:build integration

package postgres

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
)

func TestPersonaRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresPersonaRepo(testPool)
	orgRepo := NewPostgresOrganizationRepo(testPool)
	ctx := context.Background()
	cleanup(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	org := &model.Organization{
		ID: "org-1", Name: "Acme Support", Description: "SaaS support desk",
		Industry: "software", CreatedAt: now, UpdatedAt: now,
	}
	if err := orgRepo.Save(ctx, org); err != nil {
		t.Fatalf("save organization: %v", err)
	}

	persona := &model.Persona{
		ID: "p-1", Name: "Dana Reyes", Background: "Billing analyst.",
		OrganizationID: "org-1", Tags: []string{"generated", "billing"},
		CreatedAt: now, UpdatedAt: now,
	}

	t.Run("should create and read a new persona", func(t *testing.T) {
		if err := repo.Save(ctx, persona); err != nil {
			t.Fatalf("Failed to save new persona: %v", err)
		}
		found, err := repo.FindByID(ctx, persona.ID)
		if err != nil {
			t.Fatalf("Failed to find persona by ID: %v", err)
		}
		if found.Name != "Dana Reyes" || found.OrganizationID != "org-1" {
			t.Errorf("Mismatch in retrieved persona. Got name %q org %q", found.Name, found.OrganizationID)
		}
		sort.Strings(found.Tags)
		want := []string{"billing", "generated"}
		if !reflect.DeepEqual(found.Tags, want) {
			t.Errorf("tags = %v, want %v", found.Tags, want)
		}
	})

	t.Run("should upsert on repeated save", func(t *testing.T) {
		persona.Background = "Senior billing analyst."
		if err := repo.Save(ctx, persona); err != nil {
			t.Fatalf("Failed to update persona: %v", err)
		}
		updated, err := repo.FindByID(ctx, persona.ID)
		if err != nil {
			t.Fatalf("Failed to find updated persona: %v", err)
		}
		if updated.Background != "Senior billing analyst." {
			t.Errorf("Persona was not updated, got %q", updated.Background)
		}
	})

	t.Run("should reject an unknown organization", func(t *testing.T) {
		bad := &model.Persona{
			ID: "p-2", Name: "X", Background: "Y",
			OrganizationID: "org-missing", CreatedAt: now, UpdatedAt: now,
		}
		if err := repo.Save(ctx, bad); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound for a missing organization", err)
		}
	})

	t.Run("should allow a persona without an organization", func(t *testing.T) {
		solo := &model.Persona{ID: "p-3", Name: "Free Agent", Background: "Unaffiliated.", CreatedAt: now, UpdatedAt: now}
		if err := repo.Save(ctx, solo); err != nil {
			t.Fatalf("save without org: %v", err)
		}
		found, err := repo.FindByID(ctx, "p-3")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.OrganizationID != "" {
			t.Errorf("organization_id = %q, want empty", found.OrganizationID)
		}
	})

	t.Run("should list and delete", func(t *testing.T) {
		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 personas, got %d", len(all))
		}
		if err := repo.Delete(ctx, "p-3"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.FindByID(ctx, "p-3"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got: %v", err)
		}
		if err := repo.Delete(ctx, "p-3"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("double delete err = %v, want ErrNotFound", err)
		}
	})
}

func TestGoalRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresGoalRepo(testPool)
	ctx := context.Background()
	cleanup(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	goal := &model.Goal{
		ID: "g-1", Name: "Refund dispute",
		Objective:       "Get a refund",
		SuccessCriteria: "Refund confirmed",
		InitialPrompt:   "Hi, I was double-charged.",
		MaxTurns:        8,
		CreatedAt:       now, UpdatedAt: now,
	}

	if err := repo.Save(ctx, goal); err != nil {
		t.Fatalf("save goal: %v", err)
	}
	found, err := repo.FindByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("find goal: %v", err)
	}
	if found.MaxTurns != 8 || found.InitialPrompt != goal.InitialPrompt {
		t.Errorf("retrieved goal mismatch: %+v", found)
	}

	all, err := repo.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("List = %d items (%v), want 1", len(all), err)
	}

	if err := repo.Delete(ctx, "g-1"); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if _, err := repo.FindByID(ctx, "g-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
