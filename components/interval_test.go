package components

import (
	"testing"
	"time"

	"github.com/svenknobloch/ebb"
)

func TestInterval_StopsAfterTimesTicks(t *testing.T) {
	n := ebb.NewNetwork()

	src := SpawnInterval(t, n, Interval{Period: time.Millisecond, Times: 3})
	sinkProc, results := NewSink[Tick]()
	sink := ebb.SpawnProcess[SinkPorts[Tick], SinkHandle[Tick]](n, sinkProc)
	src.Output.Connect(sink.Input)
	n.AddThreads(1)

	select {
	case got := <-results:
		if len(got) != 3 {
			t.Fatalf("collected %d ticks, want 3", len(got))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("sink never observed end of sequence")
	}
}

// SpawnInterval is a small test helper so the fixture above reads as a
// single call instead of repeating the two-type-parameter instantiation.
func SpawnInterval(t *testing.T, n *ebb.Network, p Interval) IntervalHandle {
	t.Helper()
	return *ebb.SpawnProcess[IntervalPorts, IntervalHandle](n, p)
}
