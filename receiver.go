package ebb

import (
	"context"

	"code.hybscloud.com/iox"

	"github.com/svenknobloch/ebb/internal/chanbuf"
)

// recvSpins bounds how many times Recv retries a failed Pop against a short
// backoff before registering a waker and actually parking. Most Pop misses
// under light contention clear within a spin or two.
const recvSpins = 4

// ReceiverHandle is the wiring-only view of a Receiver port: enough to name
// it as a Sender or Broadcaster's target, but with no way to read from it
// directly. Zero value is not usable; obtain one from a spawned process's
// Handle.
type ReceiverHandle[T any] struct {
	ch *chanbuf.Channel[T]
}

func (h ReceiverHandle[T]) channel() *chanbuf.Channel[T] { return h.ch }

// Receiver is the consuming end of a bounded, single-consumer, many-producer
// channel. It is built automatically by Build when it appears as a field in
// a Ports struct; the zero value is not usable on its own.
type Receiver[T any] struct {
	ch   *chanbuf.Channel[T]
	done bool
}

func (r *Receiver[T]) initPort(cfg *NetworkConfig) {
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	r.ch = chanbuf.New[T](size)
}

func (r *Receiver[T]) closePort() {
	if r.ch != nil {
		r.ch.Close()
	}
}

// Handle returns the wiring handle for this receiver's channel.
func (r *Receiver[T]) Handle() ReceiverHandle[T] { return ReceiverHandle[T]{ch: r.ch} }

// Recv blocks until an item is available, the channel closes, or ctx is
// cancelled. ok is false once end-of-sequence has been observed (channel
// closed and drained) or ctx was cancelled first. End-of-sequence is
// sticky: every call after it continues to report false without touching
// the channel. A false caused by ctx cancellation is not sticky; a later
// call reads from the channel again.
func (r *Receiver[T]) Recv(ctx context.Context) (T, bool) {
	var zero T
	if r.done {
		return zero, false
	}
	for {
		backoff := iox.Backoff{}
		for spins := 0; spins < recvSpins; spins++ {
			if v, ok := r.ch.Pop(); ok {
				r.ch.WakeTx()
				return v, true
			}
			if r.ch.IsClosed() {
				r.done = true
				return zero, false
			}
			backoff.Wait()
		}

		woke := make(chan struct{}, 1)
		r.ch.RegisterRxWaker(func() {
			select {
			case woke <- struct{}{}:
			default:
			}
		})
		// Register-then-retry: a Push landing between the first Pop
		// attempt and the waker registration above must not be missed.
		if v, ok := r.ch.Pop(); ok {
			r.ch.WakeTx()
			return v, true
		}
		if r.ch.IsClosed() {
			r.done = true
			return zero, false
		}

		select {
		case <-woke:
		case <-ctx.Done():
			return zero, false
		}
	}
}
