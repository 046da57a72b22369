package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const maxResponseBytes = 4 << 20

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localChatOptions struct {
	NumCtx      int     `json:"num_ctx"`
	Temperature float64 `json:"temperature"`
}

type localChatRequest struct {
	Model    string           `json:"model"`
	Format   string           `json:"format"`
	Messages []chatMessage    `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  localChatOptions `json:"options"`
}

// LocalChat posts Ollama style chat requests with JSON output forced.
type LocalChat struct {
	cfg Config
}

func newLocalChat(cfg Config) *LocalChat {
	return &LocalChat{cfg: cfg}
}

// Complete implements Completer.
func (c *LocalChat) Complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(localChatRequest{
		Model:  c.cfg.Model,
		Format: "json",
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
		Options: localChatOptions{
			NumCtx:      c.cfg.NumCtx,
			Temperature: c.cfg.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("json.Marshal failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("client.Do failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("io.ReadAll failed: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %d %s", ErrBadStatus, resp.StatusCode, snippet(body))
	}

	text, ok := ExtractText(body)
	if !ok {
		log.Printf("llm: no text in response from %s: %s", c.cfg.URL, snippet(body))
		return "", nil
	}

	return text, nil
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
