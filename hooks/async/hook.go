// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/railcache"
//	"github.com/unkn0wn-root/railcache/client"
//	"github.com/unkn0wn-root/railcache/hooks/async"
//	"github.com/unkn0wn-root/railcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SwallowedEvery:   10, // sample logs: ~every 10th translated failure
//	    AddRejectedEvery: 1,  // log every add on an existing key
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	rc, _ := client.DialWith(railcache.Config{
//	    Hooks: hooks, // or `raw` if you don’t want async
//	}, "10.0.0.1:11211", railcache.Options{"namespace": "app"})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/railcache"
)

// Hooks forwards events to inner on a bounded queue. Events that find the queue
// full are dropped and counted.
type Hooks struct {
	inner   railcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ railcache.Hooks = (*Hooks)(nil)

func New(inner railcache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = railcache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped is the number of events lost to a full queue or a closed Hooks.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	defer func() {
		// lost the race with Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Swallowed(op, key string, err error) {
	h.try(func() { h.inner.Swallowed(op, key, err) })
}
func (h *Hooks) AddRejected(key string) { h.try(func() { h.inner.AddRejected(key) }) }
func (h *Hooks) FetchPopulated(key string, stored bool) {
	h.try(func() { h.inner.FetchPopulated(key, stored) })
}
