package agent

import (
	"context"
	"sync"

	"github.com/aatumaykin/hive/internal/llm"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/metrics"
)

// Inbound is one event entering the router.
type Inbound struct {
	Content   string
	Sender    string
	MessageID string
	ChannelID string
	Broadcast bool
	Mentions  []string

	// Override forces the respond decision for every dispatched agent,
	// bypassing addressing rules. Used by the scheduler.
	Override *bool
}

// AgentReply pairs an agent's name with the reply it produced.
type AgentReply struct {
	AgentName string
	Reply     Reply
}

// Manager routes inbound events to every agent on the team concurrently
// and collects the replies.
type Manager struct {
	agents  []*Agent
	byName  map[string]*Agent
	shared  *Context
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewManager creates a Manager over the shared context.
func NewManager(shared *Context, m *metrics.Metrics, log *logger.Logger) *Manager {
	return &Manager{
		byName:  make(map[string]*Agent),
		shared:  shared,
		metrics: m,
		logger:  log,
	}
}

// Add registers an agent. Registration order determines reply order.
func (m *Manager) Add(agent *Agent) {
	if _, exists := m.byName[agent.Name()]; exists {
		return
	}
	m.agents = append(m.agents, agent)
	m.byName[agent.Name()] = agent
}

// Get returns the agent with the given name.
func (m *Manager) Get(name string) (*Agent, bool) {
	agent, ok := m.byName[name]
	return agent, ok
}

// All returns the agents in registration order.
func (m *Manager) All() []*Agent {
	out := make([]*Agent, len(m.agents))
	copy(out, m.agents)
	return out
}

// Shared returns the team's shared context.
func (m *Manager) Shared() *Context {
	return m.shared
}

// Route fans the event out to every agent concurrently and joins the
// results. One agent failing or staying silent never affects the others.
// Replies come back in agent registration order.
func (m *Manager) Route(ctx context.Context, in Inbound) []AgentReply {
	m.metrics.MessagesRouted.Inc()

	// Record the inbound message once, before fan-out. The dedup id makes
	// redelivery a no-op.
	m.shared.Append(llm.RoleUser, in.Content, in.Sender, in.MessageID)

	results := make([]*Reply, len(m.agents))
	var wg sync.WaitGroup

	for i, ag := range m.agents {
		req, dispatch := m.requestFor(ag, in)
		if !dispatch {
			continue
		}
		wg.Add(1)
		go func(i int, ag *Agent, req MessageRequest) {
			defer wg.Done()
			results[i] = ag.OnMessage(ctx, req)
		}(i, ag, req)
	}
	wg.Wait()

	replies := make([]AgentReply, 0, len(m.agents))
	for i, reply := range results {
		if reply == nil {
			continue
		}
		replies = append(replies, AgentReply{AgentName: m.agents[i].Name(), Reply: *reply})
	}
	return replies
}

// requestFor applies the addressing rules for one agent: an explicit
// mention or a broadcast forces a respond; a message that mentions only
// other agents is not dispatched to this one at all.
func (m *Manager) requestFor(ag *Agent, in Inbound) (MessageRequest, bool) {
	req := MessageRequest{
		Content:         in.Content,
		Sender:          in.Sender,
		RespondOverride: in.Override,
		RecordIncoming:  false,
		MessageID:       in.MessageID,
		ChannelID:       in.ChannelID,
	}

	if req.RespondOverride == nil {
		switch {
		case containsName(in.Mentions, ag.Name()) || in.Broadcast:
			forced := true
			req.RespondOverride = &forced
		case len(in.Mentions) > 0:
			// Addressed to specific other agents.
			return MessageRequest{}, false
		}
	}
	return req, true
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
