package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	ps := NewPubSub[string]()

	a := ps.Subscribe("standings-1")
	b := ps.Subscribe("standings-1")
	other := ps.Subscribe("standings-2")

	got := make(chan string, 2)
	for _, ch := range []<-chan string{a, b} {
		ch := ch
		go func() { got <- <-ch }()
	}

	ps.Publish("standings-1", "snapshot")
	assert.Equal(t, "snapshot", <-got)
	assert.Equal(t, "snapshot", <-got)

	select {
	case <-other:
		t.Fatal("subscriber on another topic must not receive")
	default:
	}
}

func TestStalledSubscriberNeverWedgesPublishOrClose(t *testing.T) {
	ps := NewPubSub[string]()

	stalled := ps.Subscribe("standings-1")
	draining := ps.Subscribe("standings-1")

	// Nobody reads stalled; repeated publishes must return regardless.
	for i := 0; i < 5; i++ {
		ps.Publish("standings-1", "snapshot")
		assert.Equal(t, "snapshot", <-draining)
	}

	// The stalled subscriber kept the first update it never drained.
	assert.Equal(t, "snapshot", <-stalled)

	done := make(chan struct{})
	go func() {
		ps.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close must not block on an undrained subscriber")
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	ps := NewPubSub[int]()
	ch := ps.Subscribe("t")
	ps.Close()

	_, open := <-ch
	require.False(t, open)

	// Publishing after close is dropped, subscribing yields a closed
	// channel immediately.
	ps.Publish("t", 1)
	_, open = <-ps.Subscribe("t")
	assert.False(t, open)
}
