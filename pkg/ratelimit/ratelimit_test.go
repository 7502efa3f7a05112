package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacer_NoBlockWhenZeroInterval(t *testing.T) {
	p := NewPacer(0, 0.5)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Error("pacer with zero interval should not block")
	}
}

func TestPacer_Wait(t *testing.T) {
	p := NewPacer(50*time.Millisecond, 0)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := time.Since(start)
	if d < 40*time.Millisecond || d > 150*time.Millisecond {
		t.Errorf("expected wait around 50ms, took %v", d)
	}
}

func TestPacer_ContextCancellation(t *testing.T) {
	p := NewPacer(time.Second, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx); err == nil {
		t.Fatal("expected context canceled error")
	}
}

func TestMonitor_CountsWithinWindow(t *testing.T) {
	m := NewMonitor(time.Minute)

	for i := 1; i <= 5; i++ {
		if got := m.Record(); got != i {
			t.Fatalf("Record() = %d, want %d", got, i)
		}
	}
	if got := m.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
}

func TestMonitor_ResetsAfterWindow(t *testing.T) {
	m := NewMonitor(time.Minute)

	clock := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Record()
	m.Record()

	clock = clock.Add(61 * time.Second)
	if got := m.Count(); got != 0 {
		t.Errorf("Count() after window rollover = %d, want 0", got)
	}
	if got := m.Record(); got != 1 {
		t.Errorf("Record() after rollover = %d, want 1", got)
	}
}

func TestMonitor_NeverBlocks(t *testing.T) {
	m := NewMonitor(time.Minute)

	start := time.Now()
	for i := 0; i < 10000; i++ {
		m.Record()
	}
	if time.Since(start) > time.Second {
		t.Error("advisory monitor must not throttle callers")
	}
}

func TestMonitor_DefaultWindow(t *testing.T) {
	m := NewMonitor(0)
	if m.Window() != time.Minute {
		t.Errorf("default window = %v, want 1m", m.Window())
	}
}
