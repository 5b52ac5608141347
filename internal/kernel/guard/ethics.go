package guard

import "strings"

// defaultDenyPatterns block the task categories the kernel refuses
// unconditionally. A comma-separated NEUROEDGE_ETHICS_DENY_PATTERNS
// (surfaced through config) replaces the set wholesale.
var defaultDenyPatterns = []string{
	"rm -rf",
	"format disk",
	"drop database",
	"disable auth",
	"bypass safety",
}

type Ethics struct {
	denyPatterns []string
}

func NewEthics(patterns []string) *Ethics {
	if len(patterns) == 0 {
		patterns = defaultDenyPatterns
	}
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return &Ethics{denyPatterns: normalized}
}

// Evaluate reports whether the action is permitted. Empty actions are
// denied: the kernel never executes something it cannot inspect.
func (e *Ethics) Evaluate(action string) bool {
	candidate := strings.ToLower(strings.TrimSpace(action))
	if candidate == "" {
		return false
	}
	for _, p := range e.denyPatterns {
		if strings.Contains(candidate, p) {
			return false
		}
	}
	return true
}
