package asynchook

import (
	"errors"
	"sync"
	"testing"
)

type countingHooks struct {
	mu        sync.Mutex
	swallowed []string
	rejected  []string
	populated map[string]bool
	block     chan struct{}
}

func (c *countingHooks) Swallowed(op, key string, _ error) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.swallowed = append(c.swallowed, op+":"+key)
	c.mu.Unlock()
}

func (c *countingHooks) AddRejected(key string) {
	c.mu.Lock()
	c.rejected = append(c.rejected, key)
	c.mu.Unlock()
}

func (c *countingHooks) FetchPopulated(key string, stored bool) {
	c.mu.Lock()
	if c.populated == nil {
		c.populated = map[string]bool{}
	}
	c.populated[key] = stored
	c.mu.Unlock()
}

func TestForwardsEvents(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 2, 16)

	h.Swallowed("get", "a", errors.New("x"))
	h.AddRejected("b")
	h.FetchPopulated("c", true)
	h.Close()

	if len(inner.swallowed) != 1 || inner.swallowed[0] != "get:a" {
		t.Fatalf("swallowed=%v", inner.swallowed)
	}
	if len(inner.rejected) != 1 || inner.rejected[0] != "b" {
		t.Fatalf("rejected=%v", inner.rejected)
	}
	if !inner.populated["c"] {
		t.Fatalf("populated=%v", inner.populated)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countingHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// the worker takes the first event and blocks on it; the second fills the queue
	h.Swallowed("get", "1", nil)
	for h.Dropped() == 0 {
		h.Swallowed("get", "n", nil)
	}
	close(inner.block)
	h.Close()

	if h.Dropped() == 0 {
		t.Fatalf("expected drops")
	}
}

func TestAfterClose(t *testing.T) {
	h := New(nil, 1, 1)
	h.Close()
	h.Close()
	h.AddRejected("k")
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}
