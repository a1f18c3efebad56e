// Package inflight collapses concurrent fetches for the same key into one call.
package inflight

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Group tracks one in-flight call per key.
type Group struct {
	sf singleflight.Group

	mu      sync.Mutex
	running map[string]int
}

// New creates an empty Group.
func New() *Group {
	return &Group{running: make(map[string]int)}
}

// Do runs fn for key unless a call for key is already running, in which case it
// waits for that call. shared reports whether the result went to more than one caller.
//
// If ctx is done before the call settles Do returns ctx.Err(). The call itself keeps
// running for the other waiters, fn is expected to carry its own deadline.
func (g *Group) Do(ctx context.Context, key string, fn func() (any, error)) (v any, err error, shared bool) {
	ch := g.sf.DoChan(key, func() (any, error) {
		g.track(key, 1)
		defer g.track(key, -1)
		return fn()
	})

	select {
	case res := <-ch:
		return res.Val, res.Err, res.Shared
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}

// Forget detaches the running call for key, if any. The next Do for key starts a
// new call while the detached one completes for its existing waiters.
func (g *Group) Forget(key string) {
	g.sf.Forget(key)
}

// ForgetPrefix detaches every running call whose key starts with prefix.
func (g *Group) ForgetPrefix(prefix string) {
	for _, key := range g.Keys() {
		if strings.HasPrefix(key, prefix) {
			g.sf.Forget(key)
		}
	}
}

// Running reports whether a call for key is in progress.
func (g *Group) Running(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running[key] > 0
}

// InFlight returns the number of calls in progress, detached ones included.
func (g *Group) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.running {
		n += c
	}
	return n
}

// Keys returns the keys with a call in progress.
func (g *Group) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.running))
	for k := range g.running {
		keys = append(keys, k)
	}
	return keys
}

func (g *Group) track(key string, delta int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running[key] += delta
	if g.running[key] <= 0 {
		delete(g.running, key)
	}
}
