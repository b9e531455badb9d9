package ebb

import (
	"context"
	"testing"
	"time"
)

func TestReceiver_RecvBlocksUntilPush(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 2}
	p := Build[testPorts](cfg)

	done := make(chan int, 1)
	go func() {
		v, ok := p.In.Recv(context.Background())
		if !ok {
			t.Error("Recv reported no value")
			return
		}
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatalf("Recv returned before any Push")
	default:
	}

	if err := p.In.ch.Push(42); err != nil {
		t.Fatalf("Push: %v", err)
	}
	p.In.ch.WakeRx()

	select {
	case v := <-done:
		if v != 42 {
			t.Fatalf("Recv() = %d, want 42", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Recv did not wake after Push")
	}
}

func TestReceiver_EndOfSequenceIsSticky(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 2}
	p := Build[testPorts](cfg)
	p.In.ch.Close()

	for i := 0; i < 3; i++ {
		if _, ok := p.In.Recv(context.Background()); ok {
			t.Fatalf("Recv() call %d reported a value on a closed, empty channel", i)
		}
	}
}

func TestReceiver_DrainsBufferedItemsBeforeEndOfSequence(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 2}
	p := Build[testPorts](cfg)
	_ = p.In.ch.Push(1)
	_ = p.In.ch.Push(2)
	p.In.ch.Close()

	for _, want := range []int{1, 2} {
		v, ok := p.In.Recv(context.Background())
		if !ok || v != want {
			t.Fatalf("Recv() = %d,%v; want %d,true", v, ok, want)
		}
	}
	if _, ok := p.In.Recv(context.Background()); ok {
		t.Fatalf("Recv() returned a value past end of sequence")
	}
}

func TestReceiver_RecvRespectsContextCancellation(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 1}
	p := Build[testPorts](cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := p.In.Recv(ctx); ok {
		t.Fatalf("Recv() returned a value despite nothing ever being sent")
	}
}
