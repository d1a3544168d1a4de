package taskmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/observability"
	"github.com/bookmarkhub/a2a/internal/progress"
	"github.com/bookmarkhub/a2a/internal/registry"
	"github.com/bookmarkhub/a2a/internal/store"
)

// Manager is the Task Manager: it creates tasks, dispatches
// them to agents through the registry, advances each task's workflow
// stage by stage, merges artifact output into downstream context, and
// enforces cancellation and replay.
type Manager struct {
	tasks     *store.TaskStore
	artifacts *store.ArtifactStore
	messages  *store.MessageLog
	registry  *registry.Registry
	hub       *progress.Hub
	workflows map[string][]string
	tracer    *observability.TraceManager
	metrics   *observability.MetricsManager
	logger    *slog.Logger
}

// New returns a Manager wired to its stores, registry, and progress hub.
// workflows maps workflow_type to its ordered agent sequence; callers
// typically pass a2a.DefaultWorkflows() merged with any operator-defined
// extensions. metrics may be nil, in which case stage dispatch is not
// instrumented.
func New(
	tasks *store.TaskStore,
	artifacts *store.ArtifactStore,
	messages *store.MessageLog,
	reg *registry.Registry,
	hub *progress.Hub,
	workflows map[string][]string,
	tracer *observability.TraceManager,
	metrics *observability.MetricsManager,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		tasks:     tasks,
		artifacts: artifacts,
		messages:  messages,
		registry:  reg,
		hub:       hub,
		workflows: workflows,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Submit resolves workflowType's agent sequence, creates the root task in
// pending, and dispatches the pipeline asynchronously: the returned task
// id is available immediately while stages run on a detached context, so
// a caller driving this from an HTTP handler is never blocked for the
// duration of a multi-stage, externally-bound pipeline.
func (m *Manager) Submit(ctx context.Context, taskType, workflowType string, taskContext map[string]any, userID string) (string, error) {
	agents, ok := m.workflows[workflowType]
	if !ok {
		return "", fmt.Errorf("unknown workflow_type %q: %w", workflowType, a2a.ErrInvalidInput)
	}

	task, err := m.tasks.CreateTask(ctx, taskType, workflowType, agents, userID, taskContext, nil)
	if err != nil {
		return "", err
	}

	m.hub.PublishStatus(ctx, task)

	go m.runWorkflow(context.Background(), task.ID)

	return task.ID, nil
}

// Replay resumes a failed task from its last successful stage, reusing
// the artifacts already written by completed stages.
func (m *Manager) Replay(ctx context.Context, taskID string) error {
	task, err := m.tasks.ResumeForReplay(ctx, taskID)
	if err != nil {
		return err
	}
	m.hub.PublishStatus(ctx, task)
	go m.runWorkflow(context.Background(), taskID)
	return nil
}

// Cancel marks cancellation intent. The current agent observes it at its
// next progress checkpoint and is obligated to return promptly.
func (m *Manager) Cancel(ctx context.Context, taskID string) error {
	return m.tasks.RequestCancel(ctx, taskID)
}

// runWorkflow drives a task through its remaining stages until it
// reaches a terminal state or a dispatch call itself errors out (a
// condition distinct from the agent returning a failed Result, handled by
// dispatchStage itself transitioning the task to failed).
func (m *Manager) runWorkflow(ctx context.Context, taskID string) {
	for {
		done, err := m.dispatchStage(ctx, taskID)
		if err != nil {
			m.logger.ErrorContext(ctx, "dispatch failed", "task_id", taskID, "error", err)
			return
		}
		if done {
			return
		}
	}
}

// dispatchStage runs exactly one stage of taskID's workflow. It returns
// done=true once the task has reached a terminal state.
func (m *Manager) dispatchStage(ctx context.Context, taskID string) (done bool, err error) {
	task, err := m.tasks.Load(ctx, taskID)
	if err != nil {
		return true, err
	}
	if a2a.IsTerminal(task.Status) {
		return true, nil
	}

	agentType, hasNext := task.NextAgent()
	if !hasNext {
		completed, err := m.tasks.Transition(ctx, taskID, task.Status, a2a.TaskCompleted, store.TaskPatch{})
		if err != nil {
			return true, err
		}
		m.hub.PublishStatus(ctx, completed)
		return true, nil
	}

	if task.Status == a2a.TaskPending {
		running, err := m.tasks.Transition(ctx, taskID, a2a.TaskPending, a2a.TaskRunning, store.TaskPatch{
			CurrentAgent: &agentType,
		})
		if err != nil {
			return true, err
		}
		task = running
		m.hub.PublishStatus(ctx, task)
	}

	cancelled, err := m.tasks.IsCancelled(ctx, taskID)
	if err != nil {
		return true, err
	}
	if cancelled {
		return m.finishCancelled(ctx, taskID)
	}

	agent, err := m.registry.Lookup(agentType)
	if err != nil {
		return m.finishFailed(ctx, taskID, fmt.Errorf("dispatch %s: %w", agentType, err))
	}

	if err := agent.Validate(ctx, task.Context); err != nil {
		return m.finishFailed(ctx, taskID, err)
	}

	stageCtx, span := m.startSpan(ctx, task, agentType)
	reporter := &taskProgressReporter{ctx: ctx, taskID: taskID, agentType: agentType, tasks: m.tasks, messages: m.messages, hub: m.hub}

	started := time.Now()
	result := func() (res a2a.Result) {
		defer func() {
			if r := recover(); r != nil {
				res = a2a.Failed(fmt.Errorf("agent %s panicked: %v", agentType, r))
			}
		}()
		return agent.Process(stageCtx, task, reporter)
	}()
	m.endSpan(span, result)
	m.recordStageMetrics(ctx, agentType, task.Type, result, time.Since(started))

	if result.Status == a2a.TaskFailed {
		if reporter.Cancelled() {
			return m.finishCancelled(ctx, taskID)
		}
		return m.finishFailed(ctx, taskID, result.Error)
	}

	return m.finishStageSuccess(ctx, taskID, task, agentType, result)
}

// recordStageMetrics reports one agent dispatch as an event: processed
// count and duration always, plus an error count on failure. m.metrics may
// be nil when no meter was configured.
func (m *Manager) recordStageMetrics(ctx context.Context, agentType, taskType string, result a2a.Result, duration time.Duration) {
	if m.metrics == nil {
		return
	}
	success := result.Status != a2a.TaskFailed
	m.metrics.IncrementEventsProcessed(ctx, taskType, agentType, success)
	m.metrics.RecordEventProcessingDuration(ctx, taskType, agentType, duration)
	if !success {
		m.metrics.IncrementEventErrors(ctx, taskType, agentType, "agent_failed")
	}
}

func (m *Manager) finishStageSuccess(ctx context.Context, taskID string, task *a2a.Task, agentType string, result a2a.Result) (bool, error) {
	artifact, err := m.artifacts.Put(ctx, taskID, agentType, result.ArtifactType, result.ArtifactData, result.MimeType)
	if err != nil && artifact == nil {
		return m.finishFailed(ctx, taskID, fmt.Errorf("persist artifact: %w", err))
	}

	var decoded map[string]any
	if jsonErr := json.Unmarshal(artifact.Data, &decoded); jsonErr == nil {
		if mergeErr := m.tasks.AppendContext(ctx, taskID, map[string]any{agentType: decoded}); mergeErr != nil {
			return m.finishFailed(ctx, taskID, fmt.Errorf("merge artifact context: %w", mergeErr))
		}
	}

	nextStep := task.CurrentStep + 1
	patch := store.TaskPatch{CurrentStep: &nextStep}

	if nextStep >= task.TotalSteps {
		completed, err := m.tasks.Transition(ctx, taskID, a2a.TaskRunning, a2a.TaskCompleted, patch)
		if err != nil {
			return true, err
		}
		m.hub.PublishStatus(ctx, completed)
		return true, nil
	}

	nextAgent := task.WorkflowAgents[nextStep]
	updated, err := m.tasks.AdvanceStage(ctx, taskID, nextAgent, nextStep)
	if err != nil {
		return true, err
	}
	m.hub.PublishStatus(ctx, updated)
	if m.metrics != nil {
		m.metrics.IncrementEventsPublished(ctx, task.Type, nextAgent)
	}
	return false, nil
}

func (m *Manager) finishFailed(ctx context.Context, taskID string, cause error) (bool, error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	failed, err := m.tasks.Transition(ctx, taskID, a2a.TaskRunning, a2a.TaskFailed, store.TaskPatch{ErrorMessage: &msg})
	if err != nil {
		return true, err
	}
	m.hub.PublishStatus(ctx, failed)
	return true, nil
}

func (m *Manager) finishCancelled(ctx context.Context, taskID string) (bool, error) {
	cancelled, err := m.tasks.Transition(ctx, taskID, a2a.TaskRunning, a2a.TaskCancelled, store.TaskPatch{})
	if err != nil {
		return true, err
	}
	m.hub.PublishStatus(ctx, cancelled)
	return true, nil
}

func (m *Manager) startSpan(ctx context.Context, task *a2a.Task, agentType string) (context.Context, trace.Span) {
	if m.tracer == nil {
		return ctx, nil
	}
	spanCtx, span := m.tracer.StartSpan(ctx, "taskmanager.dispatch_stage")
	m.tracer.AddTaskAttributes(span, task.ID, task.Type, map[string]any{"agent_type": agentType})
	return spanCtx, span
}

func (m *Manager) endSpan(span trace.Span, result a2a.Result) {
	if span == nil || m.tracer == nil {
		return
	}
	if result.Status == a2a.TaskFailed {
		m.tracer.RecordError(span, result.Error)
	} else {
		m.tracer.SetSpanSuccess(span)
	}
	span.End()
}
