package ebb

import (
	"context"
	"errors"

	"code.hybscloud.com/iox"

	"github.com/svenknobloch/ebb/internal/chanbuf"
	"github.com/svenknobloch/ebb/internal/metrics"
)

const ctrlInboxSize = 4

// sendSpins bounds how many times Send retries a failed Push against a
// short backoff before registering a waker and actually parking.
const sendSpins = 4

// SenderHandle is the wiring-only view of a Sender port: it can be
// connected to a Receiver, but nothing can be sent through it directly.
type SenderHandle[T any] struct {
	ctrl chan *chanbuf.Channel[T]
}

// Connect binds the sender to rx. Binding is best-effort and non-blocking:
// if the control inbox already holds ctrlInboxSize requests the sender has
// not yet picked up, this request is dropped silently. That only happens
// when a burst of reconnects races ahead of the sender looking at its
// inbox; the requests dropped are then the newest ones, and the sender
// binds to the last request that did reach the inbox.
func (h SenderHandle[T]) Connect(rx ReceiverHandle[T]) {
	select {
	case h.ctrl <- rx.ch:
	default:
	}
}

// Sender is the producing end of a bounded channel. It may be spawned
// unbound, in which case Send silently drops items until Connect is called
// on its handle; once bound, reconnecting always replaces the previous
// target rather than queuing behind it.
type Sender[T any] struct {
	ctrl   chan *chanbuf.Channel[T]
	target *chanbuf.Channel[T]
}

func (s *Sender[T]) initPort(cfg *NetworkConfig) {
	s.ctrl = make(chan *chanbuf.Channel[T], ctrlInboxSize)
}

func (s *Sender[T]) closePort() {
	s.refreshTarget()
	if s.target != nil {
		s.target.ReleaseProducer()
		s.target = nil
	}
}

// Handle returns the wiring handle used to connect this sender.
func (s *Sender[T]) Handle() SenderHandle[T] { return SenderHandle[T]{ctrl: s.ctrl} }

// refreshTarget drains every pending Connect request, keeping only the
// most recent one, and adjusts the channel's producer refcount to match.
func (s *Sender[T]) refreshTarget() {
	latest := s.target
	changed := false
	for {
		select {
		case ch := <-s.ctrl:
			latest = ch
			changed = true
			continue
		default:
		}
		break
	}
	if !changed || latest == s.target {
		return
	}
	if s.target != nil {
		s.target.ReleaseProducer()
	}
	if latest != nil {
		latest.AcquireProducer()
	}
	s.target = latest
}

// Send blocks until the item is delivered, the bound channel closes, the
// target is rebound mid-wait (in which case delivery is retried against the
// new target), or ctx is cancelled. If the sender has never been connected,
// Send drops the item and returns nil: an unbound sender is a deliberate,
// documented no-op, not an error.
func (s *Sender[T]) Send(ctx context.Context, item T) error {
	for {
		s.refreshTarget()
		if s.target == nil {
			metrics.IncPushDroppedUnbound()
			return nil
		}

		backoff := iox.Backoff{}
		var err error
		delivered := false
		for spins := 0; spins < sendSpins; spins++ {
			err = s.target.Push(item)
			if err == nil {
				s.target.WakeRx()
				delivered = true
				break
			}
			if errors.Is(err, chanbuf.ErrClosed) {
				metrics.IncError(metrics.ErrSendClosed)
				return SendError[T]{Kind: SendClosed, Item: item}
			}
			backoff.Wait()
		}
		if delivered {
			return nil
		}

		metrics.IncPushBlocked()
		target := s.target
		woke := make(chan struct{}, 1)
		target.RegisterTxWaker(func() {
			select {
			case woke <- struct{}{}:
			default:
			}
		})
		// Register-then-retry against the slot that just opened, or the
		// close that just landed, before actually waiting.
		if err2 := target.Push(item); err2 == nil {
			target.WakeRx()
			return nil
		} else if errors.Is(err2, chanbuf.ErrClosed) {
			metrics.IncError(metrics.ErrSendClosed)
			return SendError[T]{Kind: SendClosed, Item: item}
		}

		select {
		case <-woke:
			continue
		case ch := <-s.ctrl:
			// A reconnect arrived while waiting; adopt it immediately
			// rather than discarding it until the next refreshTarget.
			if s.target != nil {
				s.target.ReleaseProducer()
			}
			if ch != nil {
				ch.AcquireProducer()
			}
			s.target = ch
			continue
		case <-ctx.Done():
			return SendError[T]{Kind: SendFull, Item: item}
		}
	}
}
