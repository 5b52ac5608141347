package guard

import (
	"testing"

	"github.com/josephwere/NeuroEdge/internal/logger"
)

func TestEthicsEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		action   string
		want     bool
	}{
		{"benign action", nil, "summarize the quarterly report", true},
		{"default pattern blocked", nil, "please rm -rf /data", false},
		{"case insensitive", nil, "DROP DATABASE users", false},
		{"empty action denied", nil, "", false},
		{"whitespace only denied", nil, "   ", false},
		{"custom patterns replace defaults", []string{"launch missile"}, "rm -rf /", true},
		{"custom pattern blocked", []string{"launch missile"}, "Launch Missile now", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEthics(tt.patterns)
			if got := e.Evaluate(tt.action); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestCognitionDecide(t *testing.T) {
	tests := []struct {
		name        string
		task        string
		taskContext map[string]interface{}
		want        Decision
	}{
		{"approved", "schedule a compute run", nil, DecisionApproved},
		{"empty task needs review", "", nil, DecisionReviewRequired},
		{"deny pattern rejected", "wipe the node cache", nil, DecisionRejected},
		{
			"human approval flag",
			"deploy release",
			map[string]interface{}{"requires_human_approval": true},
			DecisionReviewRequired,
		},
		{
			"high risk needs review",
			"deploy release",
			map[string]interface{}{"risk_level": "HIGH"},
			DecisionReviewRequired,
		},
		{
			"low risk approved",
			"deploy release",
			map[string]interface{}{"risk_level": "low"},
			DecisionApproved,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCognition()
			if got := c.Decide(tt.task, tt.taskContext); got != tt.want {
				t.Errorf("Decide(%q) = %q, want %q", tt.task, got, tt.want)
			}
		})
	}
}

func TestExecuteWithGuard(t *testing.T) {
	g := New(nil, logger.Nop{})

	ran := false
	g.ExecuteWithGuard("agent-1", "summarize logs", func(task string) {
		ran = true
		if task != "summarize logs" {
			t.Errorf("fn received %q", task)
		}
	})
	if !ran {
		t.Error("approved task should run")
	}

	ran = false
	g.ExecuteWithGuard("agent-1", "bypass safety checks", func(string) { ran = true })
	if ran {
		t.Error("blocked task must not run")
	}
}

func TestSetDenyPatterns(t *testing.T) {
	g := New(nil, logger.Nop{})
	if !g.PreExecutionCheck("a", "reindex the catalogue") {
		t.Fatal("task should pass with default patterns")
	}
	g.SetDenyPatterns([]string{"reindex"})
	if g.PreExecutionCheck("a", "reindex the catalogue") {
		t.Error("task should be blocked after pattern reload")
	}
}
