package memcache

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestExpiration(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cases := []struct {
		ttl  time.Duration
		want int32
	}{
		{0, 0},
		{-time.Second, 0},
		{500 * time.Millisecond, 1},
		{30 * time.Second, 30},
		{relativeTTLLimit, int32(relativeTTLLimit / time.Second)},
		{relativeTTLLimit + time.Second, int32(now.Unix()) + int32((relativeTTLLimit+time.Second)/time.Second)},
		{100 * 365 * 24 * time.Hour, math.MaxInt32},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	}
	for _, tc := range cases {
		if got := expiration(tc.ttl, now); got != tc.want {
			t.Fatalf("expiration(%v) = %d want %d", tc.ttl, got, tc.want)
		}
	}
}

func TestNewServers(t *testing.T) {
	empty, err := New(Config{})
	if err != nil {
		t.Fatalf("New without servers: %v", err)
	}
	if _, _, err := empty.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected an error from a client without servers")
	}
	if _, err := New(Config{Servers: []string{"not-a-host-port"}}); err == nil {
		t.Fatalf("expected address resolution error")
	}
	p, err := New(Config{Servers: []string{"127.0.0.1:11211"}, Timeout: time.Second, MaxIdleConns: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.c.Timeout != time.Second || p.c.MaxIdleConns != 8 {
		t.Fatalf("config not applied: timeout=%v idle=%d", p.c.Timeout, p.c.MaxIdleConns)
	}
}
