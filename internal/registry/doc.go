// Package registry implements the Agent Registry: the process-wide table
// of live agent handles, their capability cards, and health state.
//
// Registration is explicit and happens at process start, before the
// external request surface accepts work — there is no module-load side
// effect that registers an agent implicitly.
package registry
