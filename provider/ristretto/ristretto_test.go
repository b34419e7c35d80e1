package ristretto

import (
	"bytes"
	"context"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/railcache/provider"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRistrettoInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error on zero config")
	}
}

func TestRistrettoRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if err := p.Set(ctx, "k", pr.Item{Value: []byte("v"), Flags: 1}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	it, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(it.Value, []byte("v")) || it.Flags != 1 {
		t.Fatalf("Get: ok=%v err=%v it=%+v", ok, err, it)
	}
	got, _ := p.GetMulti(ctx, []string{"k", "missing"})
	if len(got) != 1 {
		t.Fatalf("GetMulti: %v", got)
	}
}

func TestRistrettoAddDeleteFlush(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if stored, err := p.Add(ctx, "k", pr.Item{Value: []byte("1")}, 0); err != nil || !stored {
		t.Fatalf("first Add: stored=%v err=%v", stored, err)
	}
	if stored, err := p.Add(ctx, "k", pr.Item{Value: []byte("2")}, 0); err != nil || stored {
		t.Fatalf("second Add: stored=%v err=%v", stored, err)
	}
	if found, _ := p.Delete(ctx, "k"); !found {
		t.Fatalf("Delete should report found")
	}
	if found, _ := p.Delete(ctx, "k"); found {
		t.Fatalf("second Delete should report absent")
	}
	_ = p.Set(ctx, "a", pr.Item{Value: []byte("A")}, 0)
	if err := p.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "a"); ok {
		t.Fatalf("expected miss after flush")
	}
}

func TestRistrettoForeignValues(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	p.c.Set("bytes", []byte("unframed"), 1)
	p.c.Set("struct", struct{}{}, 1)
	p.c.Wait()

	it, ok, err := p.Get(ctx, "bytes")
	if err != nil || !ok || it.Flags != 0 || !bytes.Equal(it.Value, []byte("unframed")) {
		t.Fatalf("bytes: ok=%v err=%v it=%+v", ok, err, it)
	}
	if _, ok, _ := p.Get(ctx, "struct"); ok {
		t.Fatalf("non-byte value reported as a hit")
	}
	if _, still := p.c.Get("struct"); !still {
		t.Fatalf("non-byte value was removed by a read")
	}
	if _, still := p.c.Get("bytes"); !still {
		t.Fatalf("unframed value was removed by a read")
	}
}
