package ristretto

import (
	"bytes"
	"context"
	"testing"
)

func TestProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := Dial(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})(ctx)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer p.Close(ctx)

	val := []byte("session-bytes")
	if ok, err := p.Set(ctx, "k", val, int64(len(val)), 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, val) {
		t.Fatalf("Get right after Set: ok=%v err=%v", ok, err)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("hit after Del")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected invalid config error")
	}
}
