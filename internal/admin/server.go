package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/progress"
	"github.com/bookmarkhub/a2a/internal/store"
	"github.com/bookmarkhub/a2a/internal/taskmanager"
)

// Server is the admin/query HTTP surface: list and inspect tasks, read
// their artifacts and message history, and drive submit/cancel/replay.
type Server struct {
	manager   *taskmanager.Manager
	tasks     *store.TaskStore
	artifacts *store.ArtifactStore
	messages  *store.MessageLog
	hub       *progress.Hub
	router    *mux.Router
}

// NewServer builds an admin Server routed on a fresh mux.Router.
func NewServer(manager *taskmanager.Manager, tasks *store.TaskStore, artifacts *store.ArtifactStore, messages *store.MessageLog, hub *progress.Hub) *Server {
	s := &Server{manager: manager, tasks: tasks, artifacts: artifacts, messages: messages, hub: hub, router: mux.NewRouter()}
	s.routes()
	return s
}

// Handler returns the server's http.Handler for mounting into a parent
// mux or http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", s.handleSubmitTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", s.handleGetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/cancel", s.handleCancelTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/replay", s.handleReplayTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/artifacts", s.handleListArtifacts).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/messages", s.handleListMessages).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/stream", s.handleStream).Methods(http.MethodGet)
}

type submitRequest struct {
	TaskType     string         `json:"taskType"`
	WorkflowType string         `json:"workflowType"`
	Context      map[string]any `json:"context"`
	UserID       string         `json:"userId"`
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	taskID, err := s.manager.Submit(r.Context(), req.TaskType, req.WorkflowType, req.Context, req.UserID)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"taskId": taskID})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	task, err := s.tasks.Load(r.Context(), taskID)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := a2a.TaskFilter{
		Status:       a2a.TaskStatus(q.Get("status")),
		WorkflowType: q.Get("workflowType"),
		UserID:       q.Get("userId"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}
	if since, err := time.Parse(time.RFC3339, q.Get("since")); err == nil {
		filter.Since = since
	}
	if until, err := time.Parse(time.RFC3339, q.Get("until")); err == nil {
		filter.Until = until
	}

	tasks, err := s.tasks.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	if err := s.manager.Cancel(r.Context(), taskID); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancel_requested"})
}

func (s *Server) handleReplayTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	if err := s.manager.Replay(r.Context(), taskID); err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "replay_started"})
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	q := r.URL.Query()
	artifacts, err := s.artifacts.Get(r.Context(), a2a.ArtifactFilter{TaskID: taskID, AgentType: q.Get("producer"), Type: q.Get("type")})
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": artifacts})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid since timestamp: %w", err))
			return
		}
		since = parsed
	}

	messages, err := s.messages.Tail(r.Context(), taskID, since)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleStream serves a task's live progress as Server-Sent Events: a
// snapshot event immediately on connect, then every message/status event
// published until the task reaches a terminal state or the client
// disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	events, err := s.hub.Subscribe(r.Context(), taskID)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
		flusher.Flush()
	}
}

func statusForErr(err error) int {
	switch {
	case errors.Is(err, a2a.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, a2a.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, a2a.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, a2a.ErrAgentNotRegistered), errors.Is(err, a2a.ErrAgentInactive):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
