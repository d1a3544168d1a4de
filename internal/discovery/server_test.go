package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/registry"
)

type stubRegAgent struct{ card a2a.CapabilityCard }

func (s *stubRegAgent) Capabilities() a2a.CapabilityCard { return s.card }
func (s *stubRegAgent) Validate(ctx context.Context, taskContext map[string]any) error { return nil }
func (s *stubRegAgent) Process(ctx context.Context, task *a2a.Task, progress a2a.ProgressReporter) a2a.Result {
	return a2a.Result{}
}

func TestHandleDirectoryListsActiveAgents(t *testing.T) {
	reg := registry.New(time.Minute)
	card := a2a.CapabilityCard{AgentType: a2a.AgentImport, Version: "1.0.0"}
	reg.Register(&stubRegAgent{card: card}, card)

	srv := NewServer(reg)
	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body agentDirectory
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Agents, 1)
	require.Equal(t, a2a.AgentImport, body.Agents[0].AgentType)
}

func TestHandleCapabilitiesNotFound(t *testing.T) {
	reg := registry.New(time.Minute)
	srv := NewServer(reg)

	req := httptest.NewRequest(http.MethodGet, "/api/agents/unknown/capabilities", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}
