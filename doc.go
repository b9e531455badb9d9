// Package ebb is a small runtime for wiring long-lived processes into a
// typed dataflow graph and driving them to completion.
//
// A Network owns two pools of tasks — local, driven only by whichever
// goroutine calls Tick, Run or Complete, and shared, driven by that same
// goroutine plus every worker added with AddThreads — and an active-process
// counter that reaches zero, and closes the network's shutdown signal,
// exactly when every accounted process has finished.
//
// Processes are built from a Ports struct: a plain Go struct whose fields
// are Receiver, Sender or Broadcaster values, built by Build and handed to
// SpawnProcess or SpawnLocalProcess together with a Process implementation.
// Spawning returns a handle carrying only the wiring surface (SenderHandle,
// ReceiverHandle, BroadcasterHandle) so callers outside the process can
// connect channels without touching its internals.
//
// Channels are bounded, single-consumer, many-producer, and support late
// binding: a Sender created before its target Receiver exists starts out
// unbound, silently drops sends until Connect is called, and always serves
// the most recently connected target rather than queueing a sequence of
// bindings.
package ebb
