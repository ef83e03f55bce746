package agenthost

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
var _ adapter.AgentHostAdapter = (*HTTPAdapter)(nil)

// HTTPAdapter talks to the agent host's thread API. One thread per
// simulation; the host carries the agent-side conversation state, so Send
// only ships the newest persona message.
type HTTPAdapter struct {
	base   string
	apiKey string
	client *http.Client
}

func NewHTTPAdapter(base, apiKey string) (*HTTPAdapter, error) {
	if base == "" {
		return nil, errors.New("agent host base url empty")
	}
	return &HTTPAdapter{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *HTTPAdapter) CreateThread(ctx context.Context) (string, error) {
	raw, err := a.post(ctx, "/threads", map[string]any{})
	if err != nil {
		return "", err
	}
	var payload struct {
		ThreadID string `json:"thread_id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", err
	}
	if payload.ThreadID == "" {
		return "", errors.New("agent host returned no thread id")
	}
	return payload.ThreadID, nil
}

func (a *HTTPAdapter) Send(ctx context.Context, threadID, message string) (*adapter.AgentReply, error) {
	raw, err := a.post(ctx, "/threads/"+threadID+"/messages", map[string]any{"message": message})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Content string `json:"content"`
		Reward  *int   `json:"reward"`
		Stop    bool   `json:"stop"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &adapter.AgentReply{Content: payload.Content, Reward: payload.Reward, Stop: payload.Stop}, nil
}

func (a *HTTPAdapter) post(ctx context.Context, path string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("agent host http %d: %s", resp.StatusCode, snippet(raw))
	}
	return raw, nil
}

func snippet(b []byte) string {
	const n = 200
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
