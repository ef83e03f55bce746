package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.SearchAdapter = (*ExaAdapter)(nil)

// ExaAdapter fetches real-world context snippets from the Exa search API.
// Used to ground generated personas in actual organizations and roles.
type ExaAdapter struct {
	apiKey string
	base   string
	client *http.Client
}

func NewExaAdapter(apiKey, base string) (*ExaAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("exa api key empty")
	}
	if base == "" {
		base = "https://api.exa.ai"
	}
	return &ExaAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (e *ExaAdapter) Search(ctx context.Context, query string, count int) ([]adapter.Snippet, error) {
	if count <= 0 {
		count = 3
	}
	body := map[string]any{
		"query":      query,
		"numResults": count,
		"contents":   map[string]any{"text": map[string]any{"maxCharacters": 1000}},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, e.base+"/search", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("exa http %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
			Text  string `json:"text"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	out := make([]adapter.Snippet, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, adapter.Snippet{Title: r.Title, URL: r.URL, Content: r.Text})
	}
	return out, nil
}
