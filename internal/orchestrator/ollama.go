package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

const ollamaTimeout = 120 * time.Second

// LocalEngine runs inference against a local Ollama server, avoiding the
// round trip through the orchestrator service for chat-style tasks.
type LocalEngine struct {
	client *api.Client
	model  string
	log    logger.Logger
}

// NewLocalEngine builds a client for the Ollama server at baseURL. The
// model name is required; the base URL defaults to the local daemon.
func NewLocalEngine(baseURL, model string, log logger.Logger) (*LocalEngine, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	httpClient := &http.Client{Timeout: ollamaTimeout}
	return &LocalEngine{
		client: api.NewClient(parsed, httpClient),
		model:  model,
		log:    log,
	}, nil
}

// Generate sends the prompt as a single-turn chat and returns the full
// response text.
func (e *LocalEngine) Generate(ctx context.Context, prompt string) (string, error) {
	req := &api.ChatRequest{
		Model: e.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream: ptr(false),
	}

	var out strings.Builder
	err := e.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	e.log.Debug("LocalEngine", "chat completed", map[string]interface{}{
		"model": e.model,
		"chars": out.Len(),
	})
	return out.String(), nil
}

func ptr[T any](v T) *T { return &v }
