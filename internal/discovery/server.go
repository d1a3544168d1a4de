package discovery

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/registry"
)

// Server serves the pipeline's discovery surface: the aggregate
// .well-known/agent.json directory and per-agent capability lookups.
type Server struct {
	registry *registry.Registry
	router   *mux.Router
}

// NewServer builds a discovery Server routed on a fresh mux.Router.
func NewServer(reg *registry.Registry) *Server {
	s := &Server{registry: reg, router: mux.NewRouter()}
	s.routes()
	return s
}

// Handler returns the server's http.Handler for mounting into a parent
// mux or http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("/.well-known/agent.json", s.handleDirectory).Methods(http.MethodGet)
	api := s.router.PathPrefix("/api/agents").Subrouter()
	api.HandleFunc("", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/{agentType}/capabilities", s.handleCapabilities).Methods(http.MethodGet)
}

// agentDirectory is the .well-known/agent.json shape: every
// currently active, non-stale capability card, keyed by agent_type.
type agentDirectory struct {
	Agents []a2a.CapabilityCard `json:"agents"`
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, agentDirectory{Agents: s.registry.ListActive()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, agentDirectory{Agents: s.registry.ListActive()})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	agentType := mux.Vars(r)["agentType"]
	card, err := s.registry.Card(agentType)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
