// Package discovery exposes the Discovery Endpoints: a well-known agent
// directory and per-agent capability card lookup, backed by the Agent
// Registry.
package discovery
