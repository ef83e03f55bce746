package ai

import (
	"context"
	"encoding/json"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CompletionAdapter = (*limitedCompletion)(nil)

// limitedCompletion bounds the number of concurrent upstream calls with a
// semaphore. Token counting stays unbounded because it runs locally for the
// OpenAI path and is cheap for the rest.
type limitedCompletion struct {
	inner adapter.CompletionAdapter
	sem   chan struct{}
}

func NewLimitedCompletion(inner adapter.CompletionAdapter, maxConcurrent int) adapter.CompletionAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedCompletion{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedCompletion) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedCompletion) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.release()
	return l.inner.Chat(ctx, model, messages)
}

func (l *limitedCompletion) ChatStructured(ctx context.Context, model string, messages []adapter.Message, schemaName string, schema map[string]any) (json.RawMessage, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.inner.ChatStructured(ctx, model, messages, schemaName, schema)
}

func (l *limitedCompletion) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return l.inner.CountTokens(ctx, model, messages)
}

func (l *limitedCompletion) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedCompletion) release() { <-l.sem }
