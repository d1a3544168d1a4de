// Package progress implements the Progress Stream Hub: fan-out of live
// task events to subscribers.
//
// The fan-out core is a map of task id to subscriber channels guarded by an
// RWMutex, with each delivery attempt running in its own goroutine under a
// select between the send, the subscriber's context, and a delivery
// timeout, with panic recovery around the send.
package progress
