package ebb

import (
	"context"
	"errors"

	"code.hybscloud.com/spin"

	"github.com/svenknobloch/ebb/internal/chanbuf"
	"github.com/svenknobloch/ebb/internal/metrics"
)

// BroadcasterHandle is the wiring-only view of a Broadcaster port.
type BroadcasterHandle[T any] struct {
	ctrl chan *chanbuf.Channel[T]
}

// Connect adds rx as an additional fan-out target. Unlike Sender, connecting
// a Broadcaster accumulates targets rather than replacing the previous one;
// there is no way to disconnect a target once added. The request is
// non-blocking: if the control inbox already holds ctrlInboxSize requests
// the broadcaster has not yet picked up, rx is dropped silently and never
// becomes a target.
func (h BroadcasterHandle[T]) Connect(rx ReceiverHandle[T]) {
	select {
	case h.ctrl <- rx.ch:
	default:
	}
}

// Broadcaster sends every item to every connected Receiver. A target that
// has not been connected yet simply never receives anything; a target
// connected mid-run starts receiving from the next Send call onward.
type Broadcaster[T any] struct {
	ctrl    chan *chanbuf.Channel[T]
	targets []*chanbuf.Channel[T]
}

func (b *Broadcaster[T]) initPort(cfg *NetworkConfig) {
	b.ctrl = make(chan *chanbuf.Channel[T], ctrlInboxSize)
}

func (b *Broadcaster[T]) closePort() {
	b.refreshTargets()
	for _, t := range b.targets {
		t.ReleaseProducer()
	}
	b.targets = nil
}

// Handle returns the wiring handle used to add fan-out targets.
func (b *Broadcaster[T]) Handle() BroadcasterHandle[T] { return BroadcasterHandle[T]{ctrl: b.ctrl} }

func (b *Broadcaster[T]) refreshTargets() {
	for {
		select {
		case ch := <-b.ctrl:
			if ch != nil {
				ch.AcquireProducer()
				b.targets = append(b.targets, ch)
			}
			continue
		default:
		}
		break
	}
}

// Send waits until every target has room, then writes item to all of them.
//
// TODO: an error partway through the delivery loop below leaves targets
// already written in this round half-delivered; there is no rollback or
// all-or-nothing semantics across the fan-out.
func (b *Broadcaster[T]) Send(ctx context.Context, item T) error {
	for {
		b.refreshTargets()
		waitIdx := -1
		for i, ch := range b.targets {
			if ch.IsFull() {
				waitIdx = i
				break
			}
		}
		if waitIdx < 0 {
			break
		}

		ch := b.targets[waitIdx]
		sw := spin.Wait{}
		spunClear := false
		for spins := 0; spins < 4; spins++ {
			if !ch.IsFull() {
				spunClear = true
				break
			}
			sw.Once()
		}
		if spunClear {
			continue
		}

		woke := make(chan struct{}, 1)
		ch.RegisterTxWaker(func() {
			select {
			case woke <- struct{}{}:
			default:
			}
		})
		if !ch.IsFull() {
			continue
		}
		metrics.IncPushBlocked()
		select {
		case <-woke:
		case <-ctx.Done():
			return SendError[T]{Kind: SendFull, Item: item}
		}
	}

	metrics.SetBroadcastFanout(len(b.targets))
	for _, ch := range b.targets {
		if err := ch.Push(item); err != nil {
			if errors.Is(err, chanbuf.ErrClosed) {
				metrics.IncError(metrics.ErrSendClosed)
				return SendError[T]{Kind: SendClosed, Item: item}
			}
			return SendError[T]{Kind: SendFull, Item: item}
		}
	}
	for _, ch := range b.targets {
		ch.WakeRx()
	}
	return nil
}
