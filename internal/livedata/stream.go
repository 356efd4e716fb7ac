// Package livedata provides last-value-wins observable holders.
package livedata

import "sync"

// Observable is the read side of a Stream.
type Observable[T any] interface {
	// Value returns the latest published value and whether anything has been
	// published yet.
	Value() (T, bool)
	// Subscribe returns a channel that yields the current value (if any) and
	// then every later value, plus a function that ends the subscription.
	// A slow subscriber only ever sees the newest value.
	Subscribe() (<-chan T, func())
}

// Stream holds a single value and notifies subscribers when it changes.
// No history is retained. It is safe for concurrent use.
type Stream[T any] struct {
	mu     sync.Mutex
	value  T
	set    bool
	subs   map[int]chan T
	nextID int
}

// NewStream creates an empty stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]chan T)}
}

// Value returns the latest value.
func (s *Stream[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set
}

// Post replaces the held value.
func (s *Stream[T]) Post(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(v)
}

// Update replaces the held value with fn(current) in one step, so concurrent
// updates are never lost. fn runs with the stream locked and must not call
// back into the stream.
func (s *Stream[T]) Update(fn func(current T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.value)
	s.store(next)
	return next
}

// Subscribe implements Observable.
func (s *Stream[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 1)
	if s.set {
		ch <- s.value
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Stream[T]) store(v T) {
	s.value = v
	s.set = true
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// Drop the stale value the subscriber has not read yet.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
