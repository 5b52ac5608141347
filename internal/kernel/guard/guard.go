// Package guard gates agent task execution behind ethics and cognition
// checks. Only tasks approved by both layers run.
package guard

import (
	"github.com/josephwere/NeuroEdge/internal/logger"
)

type Guard struct {
	ethics    *Ethics
	cognition *Cognition
	log       logger.Logger
}

func New(denyPatterns []string, log logger.Logger) *Guard {
	return &Guard{
		ethics:    NewEthics(denyPatterns),
		cognition: NewCognition(),
		log:       log,
	}
}

// SetDenyPatterns swaps the ethics deny set, used by config hot reload.
func (g *Guard) SetDenyPatterns(patterns []string) {
	g.ethics = NewEthics(patterns)
}

// PreExecutionCheck ensures the task is safe for the named agent.
func (g *Guard) PreExecutionCheck(agentName, task string) bool {
	return g.PreExecutionCheckWithContext(agentName, task, nil)
}

// PreExecutionCheckWithContext ensures the task is safe, consulting risk
// hints from the task context.
func (g *Guard) PreExecutionCheckWithContext(agentName, task string, taskContext map[string]interface{}) bool {
	g.log.Debug("AgentGuard", "checking task", map[string]interface{}{
		"agent": agentName,
		"task":  task,
	})

	if !g.ethics.Evaluate(task) {
		g.log.Warning("AgentGuard", "ethics blocked task", map[string]interface{}{
			"agent": agentName,
			"task":  task,
		})
		return false
	}

	decision := g.cognition.Decide(task, taskContext)
	if decision != DecisionApproved {
		g.log.Warning("AgentGuard", "cognition withheld approval", map[string]interface{}{
			"agent":    agentName,
			"decision": string(decision),
		})
		return false
	}
	return true
}

// ExecuteWithGuard runs fn only when the task passes both checks.
func (g *Guard) ExecuteWithGuard(agentName, task string, fn func(string)) {
	if g.PreExecutionCheck(agentName, task) {
		fn(task)
		return
	}
	g.log.Warning("AgentGuard", "task blocked", map[string]interface{}{
		"agent": agentName,
		"task":  task,
	})
}
