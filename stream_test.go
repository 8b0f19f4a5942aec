package vapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gefilte/vapi-go/events"
)

func TestStream_FanOutInOrder(t *testing.T) {
	s := newStream(8)
	a, unsubA := s.Subscribe()
	b, unsubB := s.Subscribe()
	defer unsubA()
	defer unsubB()

	s.Publish(events.NewCallStarted())
	s.Publish(events.NewCallEnded())

	for _, ch := range []<-chan events.Event{a, b} {
		assert.Equal(t, events.TypeCallStarted, (<-ch).Type())
		assert.Equal(t, events.TypeCallEnded, (<-ch).Type())
	}
}

func TestStream_UnsubscribeClosesChannel(t *testing.T) {
	s := newStream(1)
	ch, unsub := s.Subscribe()
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)

	// publishing without subscribers does not block
	s.Publish(events.NewCallStarted())
}

func TestStream_UnsubscribeReleasesBlockedPublish(t *testing.T) {
	s := newStream(0)
	_, unsub := s.Subscribe()

	done := make(chan struct{})
	go func() {
		s.Publish(events.NewCallStarted())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("publish should block on a full subscriber")
	case <-time.After(50 * time.Millisecond):
	}

	unsub()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "publish still blocked after unsubscribe")
	}
}
