// Package a2a defines the core types shared by every component of the
// Agent-to-Agent workflow runtime: tasks, artifacts, messages, and agent
// capability cards, plus the workflow definitions and error taxonomy that
// tie them together.
//
// # Overview
//
// A workflow is an ordered list of agent type names. The Task Manager walks
// a Task through that list one stage at a time, handing each stage's
// immutable Artifact forward as context for the next. Nothing in this
// package talks to a database, a network, or a process boundary; it is the
// vocabulary the rest of the module is written in.
package a2a
