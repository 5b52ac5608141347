package guard

import "strings"

// Decision is the cognition verdict for a task.
type Decision string

const (
	DecisionApproved       Decision = "approved"
	DecisionRejected       Decision = "rejected"
	DecisionReviewRequired Decision = "review_required"
)

type Cognition struct {
	denyPatterns []string
}

func NewCognition() *Cognition {
	return &Cognition{
		denyPatterns: []string{
			"disable auth",
			"bypass safety",
			"drop database",
			"wipe",
		},
	}
}

// Decide evaluates the task against the cognition deny patterns and any
// risk hints carried in the task context.
func (c *Cognition) Decide(task string, taskContext map[string]interface{}) Decision {
	normalized := strings.ToLower(strings.TrimSpace(task))
	if normalized == "" {
		return DecisionReviewRequired
	}
	for _, p := range c.denyPatterns {
		if strings.Contains(normalized, p) {
			return DecisionRejected
		}
	}
	if taskContext != nil {
		if critical, ok := taskContext["requires_human_approval"].(bool); ok && critical {
			return DecisionReviewRequired
		}
		if risk, ok := taskContext["risk_level"].(string); ok && strings.EqualFold(risk, "high") {
			return DecisionReviewRequired
		}
	}
	return DecisionApproved
}
