// Package broadcast fans a single changing value out to any number of
// subscribers. Subscribers always observe the most recent value; values
// published while a subscriber is busy are coalesced.
package broadcast

import (
	"context"
	"sync"
)

// Value holds the latest published T and delivers it to subscribers.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	has    bool
	subs   map[int]chan T
	nextID int
}

// New returns a Value that already holds initial, so new subscribers
// receive it immediately.
func New[T any](initial T) *Value[T] {
	v := &Value[T]{}
	v.cur = initial
	v.has = true
	return v
}

// Set publishes next to every subscriber, replacing any value they have
// not consumed yet.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = next
	v.has = true
	for _, ch := range v.subs {
		offer(ch, next)
	}
}

// Get returns the latest value and whether one has been published.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur, v.has
}

// Subscribe returns a channel carrying the current value (if any) followed
// by every later one, coalesced. The channel is closed when ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	if v.subs == nil {
		v.subs = make(map[int]chan T)
	}
	id := v.nextID
	v.nextID++
	v.subs[id] = ch
	if v.has {
		ch <- v.cur
	}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, id)
		close(ch)
		v.mu.Unlock()
	}()

	return ch
}

// Subscribers reports how many subscriptions are live.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// offer replaces whatever is buffered in ch with val. Callers hold v.mu,
// which is the only path that sends on ch, so the send never blocks.
func offer[T any](ch chan T, val T) {
	select {
	case <-ch:
	default:
	}
	ch <- val
}
