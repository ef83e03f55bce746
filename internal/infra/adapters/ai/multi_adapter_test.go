package ai_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/adapter"
	ai "github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/adapters/ai"
)

type stubAI struct {
	name        string
	ctN         int
	chatN       int
	structN     int
	lastModelCT string
}

func (s *stubAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{s.name + "-model"}, nil
}

func (s *stubAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	s.ctN++
	s.lastModelCT = model
	return 1, nil
}

func (s *stubAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	s.chatN++
	return "ok", nil
}

func (s *stubAI) ChatStructured(ctx context.Context, model string, messages []adapter.Message, schemaName string, schema map[string]any) (json.RawMessage, error) {
	s.structN++
	return json.RawMessage(`{}`), nil
}

func TestRouting_ExplicitMap_Heuristics_And_Fallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	open := &stubAI{name: "openai"}
	gem := &stubAI{name: "gemini"}

	m := ai.NewMultiAdapter(
		"openai",
		map[string]adapter.CompletionAdapter{"openai": open, "gemini": gem},
		map[string]string{"custom-x": "gemini"},
	)

	// explicit map wins
	_, _ = m.CountTokens(ctx, "custom-x", nil)
	if gem.ctN != 1 || open.ctN != 0 {
		t.Fatalf("explicit map should route to gemini, got open:%d gem:%d", open.ctN, gem.ctN)
	}
	open.ctN, gem.ctN = 0, 0

	// gpt-* -> openai
	_, _ = m.Chat(ctx, "gpt-4o-mini", nil)
	if open.chatN != 1 || gem.chatN != 0 {
		t.Fatalf("heuristic gpt-* should go openai")
	}
	open.chatN, gem.chatN = 0, 0

	// gemini-* -> gemini
	_, _ = m.ChatStructured(ctx, "gemini-1.5-flash", nil, "thing", nil)
	if gem.structN != 1 || open.structN != 0 {
		t.Fatalf("heuristic gemini-* should go gemini")
	}

	// unknown -> default provider (openai)
	open.ctN, gem.ctN = 0, 0
	_, _ = m.CountTokens(ctx, "unknown", nil)
	if open.ctN != 1 || gem.ctN != 0 {
		t.Fatalf("unknown model should go to default provider (openai)")
	}
}

func TestListModelsUnion(t *testing.T) {
	t.Parallel()
	m := ai.NewMultiAdapter(
		"openai",
		map[string]adapter.CompletionAdapter{"openai": &stubAI{name: "openai"}},
		map[string]string{"custom-x": "openai"},
	)
	models, err := m.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	seen := map[string]bool{}
	for _, name := range models {
		seen[name] = true
	}
	if !seen["custom-x"] || !seen["openai-model"] {
		t.Fatalf("models = %v, want configured and provider models unioned", models)
	}
}
