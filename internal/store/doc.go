// Package store provides the durable Postgres-backed persistence layer for
// tasks, artifacts, and messages: the Task Store, Artifact Store, and
// Message Log components of the task-pipeline runtime.
//
// Every mutation goes through pgx/sqlx with DefaultQueryExecMode set to
// describe-exec rather than the driver's cache-statement default, so a
// schema migration applied while the process is running (goose, against a
// live connection pool) never leaves a connection holding a stale prepared
// plan.
package store
