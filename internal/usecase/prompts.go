package usecase

import (
	"fmt"
	"strings"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/model"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/adapter"
)

const personaSystemPrompt = "You are an expert at creating realistic test personas for AI agent evaluation. Always respond with valid JSON matching the requested schema."

const goalSystemPrompt = "You are an expert at creating test scenarios for AI agent evaluation. Always respond with valid JSON matching the requested schema."

func personaPrompt(req PersonaGenRequest, snippets []adapter.Snippet, org *model.Organization) []adapter.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d persona(s) for agent testing based on this request:\n\n%q\n\n", req.Count, req.Description)
	b.WriteString("Each persona needs a realistic, professional name and a background of 2-3 sentences describing experience, skills and personality.\n")

	if org != nil {
		fmt.Fprintf(&b, "\nThe personas belong to this organization:\nName: %s\nDescription: %s\n", org.Name, org.Description)
		if org.Industry != "" {
			fmt.Fprintf(&b, "Industry: %s\n", org.Industry)
		}
	}
	if len(snippets) > 0 {
		b.WriteString("\nGround the personas in this real-world context:\n")
		for _, s := range snippets {
			fmt.Fprintf(&b, "- %s: %s\n", s.Title, s.Content)
		}
	}

	return []adapter.Message{
		{Role: "system", Content: personaSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func goalPrompt(req GoalGenRequest) []adapter.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a test goal based on this request:\n\n%q\n\n", req.Description)
	b.WriteString("The goal needs: a concise name, an objective (what should be achieved), ")
	b.WriteString("success criteria (how to measure success), an initial prompt (the conversation opener), ")
	b.WriteString("and a reasonable max_turns (typically 5-15).\n")

	return []adapter.Message{
		{Role: "system", Content: goalSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func personaSchema(count int) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"personas": map[string]any{
				"type":     "array",
				"minItems": count,
				"maxItems": count,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":       map[string]any{"type": "string"},
						"background": map[string]any{"type": "string"},
					},
					"required":             []string{"name", "background"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"personas"},
		"additionalProperties": false,
	}
}

func goalSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":             map[string]any{"type": "string"},
			"objective":        map[string]any{"type": "string"},
			"success_criteria": map[string]any{"type": "string"},
			"initial_prompt":   map[string]any{"type": "string"},
			"max_turns":        map[string]any{"type": "integer"},
		},
		"required":             []string{"name", "objective", "success_criteria", "initial_prompt", "max_turns"},
		"additionalProperties": false,
	}
}

// personaChatMessages builds the conversation from the persona's point of
// view: agent replies become "user" turns, prior persona utterances become
// "assistant" turns.
func personaChatMessages(persona *model.Persona, goal *model.Goal, history []model.TurnMessage) []adapter.Message {
	var sys strings.Builder
	fmt.Fprintf(&sys, "You are role-playing %s in a conversation with a support agent.\n", persona.Name)
	fmt.Fprintf(&sys, "Background: %s\n\n", persona.Background)
	fmt.Fprintf(&sys, "Your objective: %s\n", goal.Objective)
	fmt.Fprintf(&sys, "You are done when: %s\n\n", goal.SuccessCriteria)
	sys.WriteString("Stay in character, write one short conversational message at a time, and keep pushing toward your objective.")

	msgs := make([]adapter.Message, 0, len(history)+1)
	msgs = append(msgs, adapter.Message{Role: "system", Content: sys.String()})
	for _, m := range history {
		role := "assistant"
		if m.Role == model.RoleAgent {
			role = "user"
		}
		msgs = append(msgs, adapter.Message{Role: role, Content: m.Content})
	}
	return msgs
}
