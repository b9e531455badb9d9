// Package affinity pins worker goroutines' backing OS thread to a CPU set,
// best-effort, so that shared-pool worker threads added via AddThreads can be
// spread deterministically across cores when the caller asks for it.
package affinity

// Pin attempts to restrict the calling OS thread to the given CPU index. It
// is a hint: platforms without support, or any failure along the way, are
// silently ignored. Callers must have already called runtime.LockOSThread.
func Pin(cpu int) {
	pin(cpu)
}
