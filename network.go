package ebb

import (
	"log/slog"
	"runtime"
	"sync"

	"code.hybscloud.com/atomix"

	"github.com/svenknobloch/ebb/internal/affinity"
	"github.com/svenknobloch/ebb/internal/logging"
	"github.com/svenknobloch/ebb/internal/metrics"
)

const pendingQueueSize = 4096

// Network owns the local and shared task pools and the active-process
// counter that drives its shutdown signal. The zero value is not usable;
// construct one with NewNetwork.
type Network struct {
	config NetworkConfig

	local  chan func()
	shared chan func()

	active       atomix.Int64
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	workers sync.WaitGroup
	nextCPU atomix.Int64
}

// NewNetwork constructs a Network. Construction never starts any goroutine;
// local tasks only run once Tick, Run or Complete is called, and shared
// tasks only run once the owning goroutine or a goroutine added via
// AddThreads is available to drive them.
func NewNetwork(opts ...NetworkOption) *Network {
	cfg := NetworkConfig{
		BufferSize: defaultBufferSize,
		Logger:     logging.L(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Network{
		config:     cfg,
		local:      make(chan func(), pendingQueueSize),
		shared:     make(chan func(), pendingQueueSize),
		shutdownCh: make(chan struct{}),
	}
}

func (n *Network) logger() *slog.Logger {
	if n.config.Logger != nil {
		return n.config.Logger
	}
	return logging.L()
}

// AddThreads spawns count additional worker goroutines driving the shared
// pool only; the owning goroutine (the one that eventually calls Run or
// Complete) always participates too, so add_threads(0) still makes
// progress on shared tasks. Local-pool tasks are never touched by these
// workers: they are driven exclusively by whichever goroutine calls Tick,
// Run or Complete, matching the single-owner contract of the local pool.
func (n *Network) AddThreads(count int) {
	for i := 0; i < count; i++ {
		cpu := int(n.nextCPU.Add(1)) - 1
		n.workers.Add(1)
		go func(cpu int) {
			defer n.workers.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			affinity.Pin(cpu)
			n.driveShared(n.shutdownCh)
		}(cpu)
	}
}

// Tick launches at most one pending task, preferring the local pool over
// the shared pool, and reports whether it found one. It never blocks: like
// driveBoth and driveShared, it only decides when a task starts, handing
// its actual execution to its own goroutine so that one blocked task (a
// Send waiting for room, a Recv waiting for data) can never stall the
// driving loop that launched it.
func (n *Network) Tick() bool {
	select {
	case t := <-n.local:
		go t()
		return true
	default:
	}
	select {
	case t := <-n.shared:
		go t()
		return true
	default:
	}
	return false
}

// Run drives both pools on the calling goroutine until f returns.
func (n *Network) Run(f func()) {
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()
	n.driveBoth(done)
}

// Complete drives both pools on the calling goroutine until the network's
// active-process counter has reached zero. Every concurrent or subsequent
// call to Complete observes the same closed shutdown signal and returns
// promptly once it fires.
func (n *Network) Complete() {
	n.driveBoth(n.shutdownCh)
}

func (n *Network) driveBoth(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case t := <-n.local:
			go t()
		case t := <-n.shared:
			go t()
		}
	}
}

func (n *Network) driveShared(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case t := <-n.shared:
			go t()
		}
	}
}

// trackProcess wraps a process's driving task so the network's
// active-process counter is incremented at spawn and decremented once the
// task returns, releasing the process's ports along the way. The original
// design's equivalent check decrements first and tests the pre-decrement
// value against zero, which only holds when the counter was already zero
// before the decrement and so never fires on the transition itself; this
// tests the post-decrement value instead, so shutdown fires exactly when
// the counter actually reaches zero.
func (n *Network) trackProcess(pool string, ports any, drive func()) func() {
	n.active.Add(1)
	metrics.IncActiveProcesses()
	metrics.IncProcessesSpawned(pool)
	return func() {
		drive()
		Release(ports)
		metrics.DecActiveProcesses()
		if n.active.Add(-1) == 0 {
			n.shutdownOnce.Do(func() {
				close(n.shutdownCh)
				metrics.IncNetworkShutdowns()
			})
		}
	}
}

// SpawnProcess builds P's ports, starts proc on the shared pool, and
// returns a handle of type H for wiring it into the rest of the network.
// Go cannot infer H from argument types alone, so call sites must
// instantiate both type parameters explicitly:
//
//	h := ebb.SpawnProcess[MyPorts, MyHandle](n, MyProcess{})
func SpawnProcess[P any, H any](n *Network, proc Process[P, H]) *H {
	ports := Build[P](&n.config)
	handle := HandleOf[H, P](ports)
	task := n.trackProcess("shared", ports, proc.Execute(ports))
	n.shared <- task
	return &handle
}

// SpawnLocalProcess is SpawnProcess for the local pool: the returned
// process's driving task is only ever launched by whichever goroutine
// calls Tick, Run or Complete on n, never by an AddThreads worker; once
// launched it runs on a goroutine of its own, like every other task.
func SpawnLocalProcess[P any, H any](n *Network, proc Process[P, H]) *H {
	ports := Build[P](&n.config)
	handle := HandleOf[H, P](ports)
	task := n.trackProcess("local", ports, proc.Execute(ports))
	n.local <- task
	return &handle
}

// SpawnTask schedules an unaccounted computation on the shared pool and
// returns a channel that carries its single result. Unlike a process, a
// task is not counted toward the active-process shutdown signal.
func SpawnTask[T any](n *Network, task func() T) <-chan T {
	result := make(chan T, 1)
	metrics.IncTasksSpawned("shared")
	n.shared <- func() { result <- task() }
	return result
}

// SpawnLocalTask is SpawnTask for the local pool.
func SpawnLocalTask[T any](n *Network, task func() T) <-chan T {
	result := make(chan T, 1)
	metrics.IncTasksSpawned("local")
	n.local <- func() { result <- task() }
	return result
}
