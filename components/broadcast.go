package components

import (
	"context"

	"github.com/svenknobloch/ebb"
)

// BroadcastPorts is the port bundle for Broadcast.
type BroadcastPorts[T any] struct {
	Input  ebb.Receiver[T]
	Output ebb.Broadcaster[T]
}

// BroadcastHandle is the wiring handle returned by spawning Broadcast.
type BroadcastHandle[T any] struct {
	Input  ebb.ReceiverHandle[T]
	Output ebb.BroadcasterHandle[T]
}

// Broadcast relays every value read from Input to every target connected to
// Output, turning a single-consumer channel into a fan-out point.
type Broadcast[T any] struct{}

func NewBroadcast[T any]() Broadcast[T] { return Broadcast[T]{} }

func (p Broadcast[T]) Execute(ports BroadcastPorts[T]) func() {
	return func() {
		ctx := context.Background()
		for {
			v, ok := ports.Input.Recv(ctx)
			if !ok {
				return
			}
			if err := ports.Output.Send(ctx, v); err != nil {
				return
			}
		}
	}
}
