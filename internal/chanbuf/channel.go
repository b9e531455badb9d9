// Package chanbuf implements the bounded MPSC channel substrate shared by
// every typed Sender, Broadcaster and Receiver in ebb. It wraps a lock-free
// ring buffer with the waker bookkeeping needed to suspend a blocked sender
// or receiver without busy-waiting, and with reference counting over the
// set of currently-bound producers so a channel can close itself once its
// last producer goes away, not only when its receiver does.
package chanbuf

import (
	"errors"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"

	"github.com/svenknobloch/ebb/internal/metrics"
)

// ErrFull is returned by Push when the ring buffer has no free slot.
var ErrFull = errors.New("chanbuf: channel full")

// ErrClosed is returned by Push once the channel has closed.
var ErrClosed = errors.New("chanbuf: channel closed")

const maxWakers = 64

// Channel is the shared, reference-counted buffer backing one Receiver and
// every Sender or Broadcaster currently bound to it. It is safe for
// concurrent use by one consumer and many producers.
type Channel[T any] struct {
	ring   *lfq.MPSC[T]
	closed atomix.Bool
	length atomix.Int64

	producers atomix.Int64

	mu       sync.Mutex
	rxWakers []func()
	txWakers []func()
}

// New allocates a Channel with room for capacity buffered items.
func New[T any](capacity int) *Channel[T] {
	if capacity < 1 {
		capacity = 1
	}
	metrics.IncChannelsCreated()
	return &Channel[T]{ring: lfq.NewMPSC[T](capacity)}
}

// Cap returns the channel's fixed buffer capacity.
func (c *Channel[T]) Cap() int { return c.ring.Cap() }

// Len returns an approximate count of buffered items. Because the
// underlying ring buffer deliberately omits an exact length to avoid
// cross-core synchronization cost, this is tracked independently and may be
// momentarily stale under concurrent access; it is accurate enough for
// IsFull and for metrics/diagnostics.
func (c *Channel[T]) Len() int { return int(c.length.Load()) }

// IsFull reports whether the next Push would currently return ErrFull.
func (c *Channel[T]) IsFull() bool { return c.Len() >= c.Cap() }

// IsClosed reports whether the channel has closed, via either trigger: the
// receiver going away, or the last bound producer releasing it.
func (c *Channel[T]) IsClosed() bool { return c.closed.Load() }

// Push enqueues an item. It never blocks: callers observing ErrFull are
// expected to register a tx waker and retry.
func (c *Channel[T]) Push(item T) error {
	if c.IsClosed() {
		return ErrClosed
	}
	if err := c.ring.Enqueue(&item); err != nil {
		if lfq.IsWouldBlock(err) {
			return ErrFull
		}
		return err
	}
	c.length.Add(1)
	return nil
}

// Pop dequeues one item, if any is buffered.
func (c *Channel[T]) Pop() (T, bool) {
	v, err := c.ring.Dequeue()
	if err != nil {
		var zero T
		return zero, false
	}
	c.length.Add(-1)
	return v, true
}

// Close transitions the channel to closed. Idempotent: only the first call
// has any effect, matching the monotonic closed-stays-closed invariant.
// Both a receiver going out of scope and the producer refcount reaching
// zero route through Close, so either trigger closes the channel exactly
// once.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return
	}
	c.closed.Store(true)
	rx, tx := c.rxWakers, c.txWakers
	c.rxWakers, c.txWakers = nil, nil
	c.mu.Unlock()

	metrics.IncChannelClosed()
	if d, ok := any(c.ring).(lfq.Drainer); ok {
		d.Drain()
	}
	for _, f := range rx {
		f()
	}
	for _, f := range tx {
		f()
	}
}

// AcquireProducer registers one more live producer bound to this channel.
func (c *Channel[T]) AcquireProducer() { c.producers.Add(1) }

// ReleaseProducer unregisters a producer. Once the count returns to zero
// the channel closes, signalling end-of-sequence to the receiver even
// though the receiver itself is still alive and reading.
func (c *Channel[T]) ReleaseProducer() {
	if c.producers.Add(-1) <= 0 {
		c.Close()
	}
}

// RegisterRxWaker records a callback to run the next time an item becomes
// available or the channel closes. At most maxWakers are retained; once the
// list is full the oldest registration is discarded to make room. A Channel
// has a single consumer, so the discarded entry belongs to an earlier wait
// that has already ended, never to the caller that registered last.
func (c *Channel[T]) RegisterRxWaker(f func()) {
	c.mu.Lock()
	if len(c.rxWakers) >= maxWakers {
		c.rxWakers = c.rxWakers[1:]
	}
	c.rxWakers = append(c.rxWakers, f)
	c.mu.Unlock()
}

// RegisterTxWaker records a callback to run the next time capacity frees up
// or the channel closes.
func (c *Channel[T]) RegisterTxWaker(f func()) {
	c.mu.Lock()
	if len(c.txWakers) < maxWakers {
		c.txWakers = append(c.txWakers, f)
	}
	c.mu.Unlock()
}

// WakeRx fires every registered receive waker. Called after a successful
// Push so a blocked Recv retries promptly.
func (c *Channel[T]) WakeRx() { c.wakeAll(&c.rxWakers) }

// WakeTx pops and fires exactly one registered send waker, to avoid a
// thundering herd of producers retrying a single freed slot.
func (c *Channel[T]) WakeTx() {
	c.mu.Lock()
	var f func()
	if n := len(c.txWakers); n > 0 {
		f = c.txWakers[0]
		c.txWakers = c.txWakers[1:]
	}
	c.mu.Unlock()
	if f != nil {
		f()
	}
}

func (c *Channel[T]) wakeAll(list *[]func()) {
	c.mu.Lock()
	fs := *list
	*list = nil
	c.mu.Unlock()
	for _, f := range fs {
		f()
	}
}
