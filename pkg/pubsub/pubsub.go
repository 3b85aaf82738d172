// Package pubsub fans session updates out to display consumers. The replay
// loop publishes, the webserver and console readers subscribe; the engine
// never depends on a subscriber keeping up with rendering, subscribers run
// their own updater goroutines.
package pubsub

import "sync"

type PubSub[T any] struct {
	mu     sync.Mutex
	subs   map[string][]chan T
	closed bool
}

func NewPubSub[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]chan T),
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T, 1)
	if ps.closed {
		close(ch)
		return ch
	}
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

// Publish never blocks: a subscriber that has not drained its buffer misses
// this update instead of wedging the tick loop and every other subscriber.
func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	for _, ch := range ps.subs[topic] {
		select {
		case ch <- data:
		default:
		}
	}
}

// Close tears the bus down at session end: every subscriber channel is
// closed so updater goroutines exit, and later publishes are dropped.
func (ps *PubSub[T]) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	ps.closed = true
	for _, chans := range ps.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	ps.subs = make(map[string][]chan T)
}
