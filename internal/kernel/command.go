package kernel

import (
	"fmt"
	"strings"
	"time"
)

// Command is an orchestrator command submitted through /execute or /chat.
type Command struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Payload  map[string]interface{} `json:"payload"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Response is the normalized command outcome.
type Response struct {
	ID        string      `json:"id"`
	Success   bool        `json:"success"`
	Stdout    string      `json:"stdout,omitempty"`
	Stderr    string      `json:"stderr,omitempty"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Normalize fills defaults: a generated ID, a non-nil payload and a known
// command type.
func (c *Command) Normalize() {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = fmt.Sprintf("kernel-%d", time.Now().UnixNano())
	}
	if c.Payload == nil {
		c.Payload = map[string]interface{}{}
	}
	c.Type = normalizeType(c.Type)
}

// Action extracts the first actionable string from the payload.
func (c *Command) Action() string {
	return extractFirstString(c.Payload, "code", "command", "message")
}

func normalizeType(commandType string) string {
	switch strings.TrimSpace(commandType) {
	case "chat", "execute", "ai_inference":
		return commandType
	default:
		return "execute"
	}
}

func extractFirstString(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if s, isString := raw.(string); isString && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
