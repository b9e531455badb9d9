package components

import (
	"context"
	"testing"
	"time"

	"github.com/svenknobloch/ebb"
)

func TestBroadcast_RelaysEveryValueToEveryTarget(t *testing.T) {
	n := ebb.NewNetwork()
	n.AddThreads(1)

	cfg := &ebb.NetworkConfig{BufferSize: 4}
	feeder := ebb.Build[feederPorts](cfg)
	feederHdl := ebb.HandleOf[feederHandle](feeder)

	bcast := ebb.SpawnProcess[BroadcastPorts[int], BroadcastHandle[int]](n, NewBroadcast[int]())
	feederHdl.Out.Connect(bcast.Input)

	sinkA, resultsA := NewSink[int]()
	sinkB, resultsB := NewSink[int]()
	a := ebb.SpawnProcess[SinkPorts[int], SinkHandle[int]](n, sinkA)
	b := ebb.SpawnProcess[SinkPorts[int], SinkHandle[int]](n, sinkB)
	bcast.Output.Connect(a.Input)
	bcast.Output.Connect(b.Input)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := feeder.Out.Send(ctx, i); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	ebb.Release(feeder)

	for name, ch := range map[string]<-chan []int{"a": resultsA, "b": resultsB} {
		select {
		case got := <-ch:
			if len(got) != 3 {
				t.Fatalf("sink %s collected %d values, want 3", name, len(got))
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("sink %s never observed end of sequence", name)
		}
	}
}
