// Package ambient provides goroutine-scoped free functions that mirror
// Network's spawn methods without threading an explicit *ebb.Network
// through every call. It is the Go analogue of a scoped thread-local: each
// goroutine sees its own binding, set for the duration of an Enter call,
// and nested Enter calls shadow the outer one for their own duration.
//
// Go has no first-class goroutine-local storage, so the binding is keyed by
// the numeric goroutine ID parsed out of runtime.Stack. That ID is stable
// for the life of a goroutine and never shared with any goroutine it
// spawns, which is exactly the isolation Enter needs: a process started
// from inside an Enter scope does not automatically inherit the ambient
// network unless it calls Enter itself.
package ambient

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"github.com/svenknobloch/ebb"
)

var (
	mu   sync.RWMutex
	bind = map[int64]*ebb.Network{}
)

func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

// Enter binds n to the calling goroutine for the duration of f, restoring
// whatever was bound before (including nothing) once f returns. Calling
// Enter again from within f shadows this binding for the inner call only.
func Enter(n *ebb.Network, f func()) {
	id := goroutineID()

	mu.Lock()
	prev, had := bind[id]
	bind[id] = n
	mu.Unlock()

	defer func() {
		mu.Lock()
		if had {
			bind[id] = prev
		} else {
			delete(bind, id)
		}
		mu.Unlock()
	}()

	f()
}

func current() (*ebb.Network, bool) {
	mu.RLock()
	n, ok := bind[goroutineID()]
	mu.RUnlock()
	return n, ok
}

// Current returns the network bound to the calling goroutine, if any.
func Current() (*ebb.Network, bool) { return current() }

func must() *ebb.Network {
	n, ok := current()
	if !ok {
		panic(ebb.ErrNoNetwork{})
	}
	return n
}

// SpawnProcess is ebb.SpawnProcess against the ambient network.
func SpawnProcess[P any, H any](proc ebb.Process[P, H]) *H {
	return ebb.SpawnProcess[P, H](must(), proc)
}

// SpawnLocalProcess is ebb.SpawnLocalProcess against the ambient network.
func SpawnLocalProcess[P any, H any](proc ebb.Process[P, H]) *H {
	return ebb.SpawnLocalProcess[P, H](must(), proc)
}

// SpawnTask is ebb.SpawnTask against the ambient network.
func SpawnTask[T any](task func() T) <-chan T {
	return ebb.SpawnTask[T](must(), task)
}

// SpawnLocalTask is ebb.SpawnLocalTask against the ambient network.
func SpawnLocalTask[T any](task func() T) <-chan T {
	return ebb.SpawnLocalTask[T](must(), task)
}
