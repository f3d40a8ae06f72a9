// Package cache holds small in-process caches for read-mostly lookups such
// as the tag catalog.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is the read-through surface services depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Len() int
}

// Sweeper is implemented by caches that can drop expired entries eagerly.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps registered caches until its context ends.
type Janitor struct {
	sweepers []Sweeper
	done     chan struct{}
}

func NewJanitor(sweepers ...Sweeper) *Janitor {
	return &Janitor{sweepers: sweepers, done: make(chan struct{})}
}

// Run blocks, sweeping every interval, and returns when ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, s := range j.sweepers {
				removed += s.Sweep()
			}
			if removed > 0 {
				slog.DebugContext(ctx, "Cache sweep", "removed", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Run has returned.
func (j *Janitor) Done() <-chan struct{} {
	return j.done
}
