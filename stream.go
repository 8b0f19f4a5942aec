package vapi

import (
	"sync"

	"github.com/gefilte/vapi-go/events"
)

type subscriber struct {
	ch   chan events.Event
	done chan struct{}
}

// stream fans events out to every subscriber in publish order. A slow
// subscriber holds up publishing until it reads or unsubscribes.
type stream struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
}

func newStream(buffer int) *stream {
	return &stream{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
	}
}

func (s *stream) Subscribe() (<-chan events.Event, func()) {
	sub := &subscriber{
		ch:   make(chan events.Event, s.buffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			close(sub.done)
			s.mu.Lock()
			delete(s.subs, sub)
			s.mu.Unlock()
			close(sub.ch)
		})
	}
}

func (s *stream) Publish(evt events.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for sub := range s.subs {
		select {
		case sub.ch <- evt:
		case <-sub.done:
		}
	}
}
