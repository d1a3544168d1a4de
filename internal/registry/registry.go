package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

// entry pairs a live agent handle with its capability card.
type entry struct {
	agent a2a.Agent
	card  a2a.CapabilityCard
}

// Registry holds every registered agent_type's handle and capability
// card. It replaces a prior entry with the same agent_type on
// re-registration, matching "one active version per agent_type".
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	staleWindow time.Duration
}

// New returns an empty Registry. staleWindow is the heartbeat window past
// which a card is excluded from dispatch without being deleted; zero
// disables staleness checking.
func New(staleWindow time.Duration) *Registry {
	return &Registry{
		entries:     make(map[string]*entry),
		staleWindow: staleWindow,
	}
}

// Register records an agent handle and its capability card, replacing any
// prior entry for the same agent_type.
func (r *Registry) Register(agent a2a.Agent, card a2a.CapabilityCard) {
	card.LastHeartbeat = time.Now()
	if card.Status == "" {
		card.Status = a2a.CapabilityActive
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[card.AgentType] = &entry{agent: agent, card: card}
}

// Heartbeat refreshes an already-registered card's LastHeartbeat without
// touching its agent handle, used by a periodic liveness ping.
func (r *Registry) Heartbeat(agentType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[agentType]
	if !ok {
		return fmt.Errorf("heartbeat %s: %w", agentType, a2a.ErrAgentNotRegistered)
	}
	e.card.LastHeartbeat = time.Now()
	return nil
}

// Lookup returns the agent handle for agentType. It fails if the type was
// never registered, or if it is registered but inactive or stale.
func (r *Registry) Lookup(agentType string) (a2a.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[agentType]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", agentType, a2a.ErrAgentNotRegistered)
	}
	if e.card.Status != a2a.CapabilityActive {
		return nil, fmt.Errorf("lookup %s: %w", agentType, a2a.ErrAgentInactive)
	}
	if r.staleWindow > 0 && e.card.Stale(r.staleWindow, time.Now()) {
		return nil, fmt.Errorf("lookup %s: %w", agentType, a2a.ErrAgentInactive)
	}
	return e.agent, nil
}

// ListActive returns the capability cards of every agent currently active
// and within its heartbeat window.
func (r *Registry) ListActive() []a2a.CapabilityCard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	cards := make([]a2a.CapabilityCard, 0, len(r.entries))
	for _, e := range r.entries {
		if e.card.Status != a2a.CapabilityActive {
			continue
		}
		if r.staleWindow > 0 && e.card.Stale(r.staleWindow, now) {
			continue
		}
		cards = append(cards, e.card)
	}
	return cards
}

// Card returns the capability card for agentType regardless of its
// active/stale state, for discovery and admin introspection.
func (r *Registry) Card(agentType string) (a2a.CapabilityCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[agentType]
	if !ok {
		return a2a.CapabilityCard{}, fmt.Errorf("card %s: %w", agentType, a2a.ErrAgentNotRegistered)
	}
	return e.card, nil
}

// HealthStatus is the outcome of a HealthCheck call.
type HealthStatus string

const (
	HealthOK      HealthStatus = "ok"
	HealthStale   HealthStatus = "stale"
	HealthUnknown HealthStatus = "unknown"
)

// HealthCheck reports an agent's registration health based on its card's
// status and heartbeat recency.
func (r *Registry) HealthCheck(ctx context.Context, agentType string) HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[agentType]
	if !ok {
		return HealthUnknown
	}
	if e.card.Status != a2a.CapabilityActive {
		return HealthStale
	}
	if r.staleWindow > 0 && e.card.Stale(r.staleWindow, time.Now()) {
		return HealthStale
	}
	return HealthOK
}

// EnsureRegistered fails fast if any agentType in required is not
// registered and active, enforcing the startup discipline that every
// agent needed by a supported workflow must be registered before the
// external request surface accepts work.
func (r *Registry) EnsureRegistered(required []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, agentType := range required {
		e, ok := r.entries[agentType]
		if !ok {
			return fmt.Errorf("startup check: %w: %s", a2a.ErrAgentNotRegistered, agentType)
		}
		if e.card.Status != a2a.CapabilityActive {
			return fmt.Errorf("startup check: %w: %s", a2a.ErrAgentInactive, agentType)
		}
	}
	return nil
}
