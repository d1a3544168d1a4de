// Package taskmanager implements the Task Manager: it creates tasks,
// dispatches them to agents through the Agent Registry, advances each
// task's workflow stage by stage, and enforces a per-task sequential,
// per-stage bounded-parallel concurrency model.
package taskmanager
