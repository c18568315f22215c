package session

import "sync"

// AgentStatus is the cosmetic per-agent state shown by the UI shell. Agents
// have no real concurrency or work units; the whole roster moves through the
// same states at the start and end of a run.
type AgentStatus string

const (
	AgentIdle     AgentStatus = "IDLE"
	AgentThinking AgentStatus = "THINKING"
	AgentWorking  AgentStatus = "WORKING"
	AgentDone     AgentStatus = "DONE"
	AgentError    AgentStatus = "ERROR"
)

// Agent is one entry in the cosmetic roster.
type Agent struct {
	ID     string
	Name   string
	Role   string
	Status AgentStatus
}

// defaultRoster mirrors the sub-agent grid of the UI shell.
func defaultRoster() []Agent {
	return []Agent{
		{ID: "nova", Name: "Nova", Role: "Architect"},
		{ID: "pixel", Name: "Pixel", Role: "Frontend"},
		{ID: "bolt", Name: "Bolt", Role: "Logic Core"},
		{ID: "sentinel", Name: "Sentinel", Role: "QA"},
	}
}

// roster holds the agent status vector behind a lock so the UI can poll it
// while a run is in flight.
type roster struct {
	mu     sync.RWMutex
	agents []Agent
}

func newRoster() *roster {
	r := &roster{agents: defaultRoster()}
	for i := range r.agents {
		r.agents[i].Status = AgentIdle
	}
	return r
}

func (r *roster) setAll(status AgentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agents {
		r.agents[i].Status = status
	}
}

func (r *roster) snapshot() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, len(r.agents))
	copy(out, r.agents)
	return out
}
