package ebb

import (
	"context"
	"testing"
	"time"
)

func TestSender_UnboundSendIsSilentNoOp(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 1}
	p := Build[testPorts](cfg)
	if err := p.Out.Send(context.Background(), 7); err != nil {
		t.Fatalf("Send on unbound sender: %v", err)
	}
}

func TestSender_MostRecentConnectWins(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 1}
	a := Build[testPorts](cfg)
	b := Build[testPorts](cfg)
	sender := Sender[int]{}
	sender.initPort(cfg)
	h := sender.Handle()

	h.Connect(a.In.Handle())
	h.Connect(b.In.Handle())

	if err := sender.Send(context.Background(), 1); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, ok := a.In.ch.Pop(); ok {
		t.Fatalf("item delivered to the superseded target")
	}
	v, ok := b.In.ch.Pop()
	if !ok || v != 1 {
		t.Fatalf("Pop() on most-recently-connected target = %d,%v; want 1,true", v, ok)
	}
}

func TestSender_SendBlocksUntilCapacityFreesUp(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 1}
	rx := Build[testPorts](cfg)
	sender := Sender[int]{}
	sender.initPort(cfg)
	sender.Handle().Connect(rx.In.Handle())

	if err := sender.Send(context.Background(), 1); err != nil {
		t.Fatalf("first Send: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- sender.Send(context.Background(), 2) }()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatalf("second Send returned while the channel was still full")
	default:
	}

	v, ok := rx.In.ch.Pop()
	if !ok || v != 1 {
		t.Fatalf("Pop() = %d,%v; want 1,true", v, ok)
	}
	rx.In.ch.WakeTx()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second Send: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("second Send never unblocked after capacity freed")
	}
}

func TestSender_SendOnClosedTargetReportsClosed(t *testing.T) {
	cfg := &NetworkConfig{BufferSize: 1}
	rx := Build[testPorts](cfg)
	sender := Sender[int]{}
	sender.initPort(cfg)
	sender.Handle().Connect(rx.In.Handle())
	rx.In.ch.Close()

	err := sender.Send(context.Background(), 1)
	se, ok := err.(SendError[int])
	if !ok || !se.Closed() {
		t.Fatalf("Send() error = %v, want SendError{Kind: SendClosed}", err)
	}
}
