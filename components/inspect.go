package components

import (
	"context"

	"github.com/svenknobloch/ebb"
)

// InspectPorts is the port bundle for Inspect.
type InspectPorts[T any] struct {
	Input  ebb.Receiver[T]
	Output ebb.Sender[T]
}

// InspectHandle is the wiring handle returned by spawning Inspect.
type InspectHandle[T any] struct {
	Input  ebb.ReceiverHandle[T]
	Output ebb.SenderHandle[T]
}

// Inspect runs f on every value it reads from Input, then forwards the
// value unchanged to Output. It terminates once Input closes.
type Inspect[T any] struct {
	F func(T)
}

func NewInspect[T any](f func(T)) Inspect[T] {
	return Inspect[T]{F: f}
}

func (p Inspect[T]) Execute(ports InspectPorts[T]) func() {
	return func() {
		ctx := context.Background()
		for {
			v, ok := ports.Input.Recv(ctx)
			if !ok {
				return
			}
			if p.F != nil {
				p.F(v)
			}
			if err := ports.Output.Send(ctx, v); err != nil {
				return
			}
		}
	}
}
