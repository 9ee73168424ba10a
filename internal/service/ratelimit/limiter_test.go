package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowBurst(t *testing.T) {
	l := New(3, 1)
	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("call %d denied within burst", i)
		}
	}
	if l.Allow() {
		t.Fatal("call allowed past capacity")
	}
}

func TestWaitRefills(t *testing.T) {
	l := New(1, 50)
	if !l.Allow() {
		t.Fatal("first call denied")
	}
	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("wait took too long for a 50/s refill")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New(1, 0.001)
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
