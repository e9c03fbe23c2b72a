package client

import (
	"context"
	"testing"
	"time"
)

func TestLocalBusFansOut(t *testing.T) {
	bus := NewLocalBus()
	defer bus.Close()

	a, err := bus.Subscribe("a")
	if err != nil {
		t.Fatalf("subscribe a: %v", err)
	}
	b, err := bus.Subscribe("b")
	if err != nil {
		t.Fatalf("subscribe b: %v", err)
	}

	if err := bus.Publish(context.Background(), []byte("hello")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for name, ch := range map[string]<-chan []byte{"a": a, "b": b} {
		select {
		case msg := <-ch:
			if string(msg) != "hello" {
				t.Errorf("%s: expected hello, got %q", name, msg)
			}
		case <-time.After(time.Second):
			t.Errorf("%s: no message received", name)
		}
	}
}

func TestLocalBusSubscribeIsIdempotent(t *testing.T) {
	bus := NewLocalBus()
	defer bus.Close()

	first, _ := bus.Subscribe("same")
	second, _ := bus.Subscribe("same")
	if first != second {
		t.Fatal("expected the same channel for a repeated subscription")
	}
}

func TestLocalBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewLocalBus()
	ch, _ := bus.Subscribe("gone")
	if err := bus.Unsubscribe("gone"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed")
	}
	if err := bus.Unsubscribe("gone"); err != nil {
		t.Fatalf("second unsubscribe: %v", err)
	}
	if err := bus.Publish(context.Background(), []byte("x")); err != nil {
		t.Fatalf("publish after unsubscribe: %v", err)
	}
}

func TestLocalBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewLocalBus()
	defer bus.Close()

	ch, _ := bus.Subscribe("slow")
	for i := 0; i < subscriberQueue+10; i++ {
		if err := bus.Publish(context.Background(), []byte("m")); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if got := len(ch); got != subscriberQueue {
		t.Fatalf("expected %d buffered messages, got %d", subscriberQueue, got)
	}
}

func TestLocalBusPublishHonoursContext(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.Publish(ctx, []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
