// Package components collects small, reusable processes built on the root
// ebb package: a ticking source, a pass-through inspector, a fan-out
// relay, and a test-oriented sink.
package components

import (
	"context"
	"time"

	"github.com/svenknobloch/ebb"
)

// Tick is the value an Interval process broadcasts on every firing: the
// wall-clock instant of the tick and how long it has been since the
// previous one.
type Tick struct {
	At      time.Time
	Elapsed time.Duration
}

// IntervalPorts is the port bundle for Interval.
type IntervalPorts struct {
	Output ebb.Broadcaster[Tick]
}

// IntervalHandle is the wiring handle returned by spawning Interval.
type IntervalHandle struct {
	Output ebb.BroadcasterHandle[Tick]
}

// Interval broadcasts a Tick every period, optionally after an initial
// delay. A positive Times bounds how many ticks it sends before its
// driving task returns; zero or negative means it keeps ticking, matching
// the upstream design's unbounded loop. In either case it stops early if
// a Send fails (a connected target has closed).
type Interval struct {
	Delay  time.Duration
	Period time.Duration
	Times  int
}

func NewInterval(delay, period time.Duration) Interval {
	return Interval{Delay: delay, Period: period}
}

func (p Interval) Execute(ports IntervalPorts) func() {
	return func() {
		ctx := context.Background()
		if p.Delay > 0 {
			time.Sleep(p.Delay)
		}
		prev := time.Now()
		for n := 0; p.Times <= 0 || n < p.Times; n++ {
			at := time.Now()
			if err := ports.Output.Send(ctx, Tick{At: at, Elapsed: at.Sub(prev)}); err != nil {
				return
			}
			prev = at
			time.Sleep(p.Period)
		}
	}
}
