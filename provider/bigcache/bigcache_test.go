package bigcache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := Dial(Config{LifeWindow: time.Hour, MaxEntrySize: 256})(ctx)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer p.Close(ctx)

	if _, ok, err := p.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get miss: ok=%v err=%v", ok, err)
	}

	val := bytes.Repeat([]byte{7}, 40)
	if ok, err := p.Set(ctx, "k", val, 1, time.Second); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, val) {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del on missing key should be a no-op: %v", err)
	}
}
