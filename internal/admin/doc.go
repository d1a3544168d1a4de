// Package admin implements the Admin/Query Surface: read access to
// task, artifact, and message history, task control operations (submit,
// cancel, replay), and a Server-Sent Events endpoint streaming a task's
// live progress off the Progress Stream Hub.
package admin
