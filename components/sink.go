package components

import (
	"context"

	"github.com/svenknobloch/ebb"
)

// SinkPorts is the port bundle for Sink.
type SinkPorts[T any] struct {
	Input ebb.Receiver[T]
}

// SinkHandle is the wiring handle returned by spawning Sink.
type SinkHandle[T any] struct {
	Input ebb.ReceiverHandle[T]
}

// Sink collects every value read from Input until it closes, then delivers
// the whole sequence on the channel returned by NewSink. It has no upstream
// analogue; it exists to make dataflow graphs assertable in tests without
// every test writing its own collector process.
type Sink[T any] struct {
	results chan<- []T
}

// NewSink returns a Sink process together with the channel that will
// receive its collected values exactly once, after Input closes.
func NewSink[T any]() (Sink[T], <-chan []T) {
	ch := make(chan []T, 1)
	return Sink[T]{results: ch}, ch
}

func (p Sink[T]) Execute(ports SinkPorts[T]) func() {
	return func() {
		ctx := context.Background()
		var out []T
		for {
			v, ok := ports.Input.Recv(ctx)
			if !ok {
				break
			}
			out = append(out, v)
		}
		p.results <- out
	}
}
