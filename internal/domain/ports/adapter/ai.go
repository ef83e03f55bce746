package adapter

import (
	"context"
	"encoding/json"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionAdapter is the port for LLM completion providers. All provider
// failures (network, rate limit, schema refusal) surface as plain errors;
// callers treat them as a single upstream failure class.
type CompletionAdapter interface {
	ListModels(ctx context.Context) ([]string, error)

	// Chat returns only the assistant text.
	Chat(ctx context.Context, model string, messages []Message) (string, error)

	// ChatStructured constrains the response to the given JSON schema and
	// returns the raw JSON payload. schemaName labels the schema for
	// providers that require one.
	ChatStructured(ctx context.Context, model string, messages []Message, schemaName string, schema map[string]any) (json.RawMessage, error)

	// CountTokens returns prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)
}
