package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

type stubAgent struct{}

func (stubAgent) Capabilities() a2a.CapabilityCard { return a2a.CapabilityCard{} }
func (stubAgent) Validate(context.Context, map[string]any) error { return nil }
func (stubAgent) Process(context.Context, *a2a.Task, a2a.ProgressReporter) a2a.Result {
	return a2a.Result{}
}

func TestRegisterAndLookup(t *testing.T) {
	reg := New(0)
	reg.Register(stubAgent{}, a2a.CapabilityCard{AgentType: a2a.AgentImport})

	agent, err := reg.Lookup(a2a.AgentImport)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if agent == nil {
		t.Fatal("Lookup() returned nil agent")
	}
}

func TestLookupUnregisteredFails(t *testing.T) {
	reg := New(0)
	_, err := reg.Lookup(a2a.AgentImport)
	if !errors.Is(err, a2a.ErrAgentNotRegistered) {
		t.Errorf("Lookup() error = %v, want ErrAgentNotRegistered", err)
	}
}

func TestLookupStaleFails(t *testing.T) {
	reg := New(time.Millisecond)
	reg.Register(stubAgent{}, a2a.CapabilityCard{AgentType: a2a.AgentImport})
	time.Sleep(5 * time.Millisecond)

	_, err := reg.Lookup(a2a.AgentImport)
	if !errors.Is(err, a2a.ErrAgentInactive) {
		t.Errorf("Lookup() error = %v, want ErrAgentInactive", err)
	}
}

func TestEnsureRegisteredFailsFastOnMissingAgent(t *testing.T) {
	reg := New(0)
	reg.Register(stubAgent{}, a2a.CapabilityCard{AgentType: a2a.AgentImport})

	err := reg.EnsureRegistered([]string{a2a.AgentImport, a2a.AgentValidation})
	if !errors.Is(err, a2a.ErrAgentNotRegistered) {
		t.Errorf("EnsureRegistered() error = %v, want ErrAgentNotRegistered", err)
	}
}

func TestListActiveExcludesStale(t *testing.T) {
	reg := New(time.Millisecond)
	reg.Register(stubAgent{}, a2a.CapabilityCard{AgentType: a2a.AgentImport})
	time.Sleep(5 * time.Millisecond)

	if cards := reg.ListActive(); len(cards) != 0 {
		t.Errorf("ListActive() = %d cards, want 0 once stale", len(cards))
	}
}
