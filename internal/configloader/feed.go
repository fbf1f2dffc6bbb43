package configloader

import "sync"

// Subscription delivers the events of one loader stream to a single consumer.
// Events queue without bound, so a slow consumer never stalls the loader or
// the other stream. C is closed once the loader shuts down and every queued
// event has been received, or right after Close.
type Subscription[T any] struct {
	c      chan T
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
	feed   *feed[T]

	mu     sync.Mutex
	queue  []T
	closed bool
}

// C returns the receive side of the subscription.
func (s *Subscription[T]) C() <-chan T { return s.c }

// Close unsubscribes. Queued events that were not received are discarded.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		if s.feed != nil {
			s.feed.remove(s)
		}
		close(s.done)
	})
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) finish() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.c)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.c <- next:
		case <-s.done:
			return
		}
	}
}

// feed fans published events out to every live subscription.
type feed[T any] struct {
	copy func(T) T

	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	closed bool
}

func newFeed[T any](copyFn func(T) T) *feed[T] {
	return &feed[T]{copy: copyFn, subs: make(map[*Subscription[T]]struct{})}
}

func (f *feed[T]) subscribe() *Subscription[T] {
	s := &Subscription[T]{
		c:      make(chan T),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		s.closed = true
		close(s.c)
		close(s.done)
		s.once.Do(func() {})
		return s
	}
	s.feed = f
	f.subs[s] = struct{}{}
	f.mu.Unlock()

	go s.pump()
	return s
}

func (f *feed[T]) remove(s *Subscription[T]) {
	f.mu.Lock()
	delete(f.subs, s)
	f.mu.Unlock()
}

func (f *feed[T]) publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		if f.copy != nil {
			s.push(f.copy(v))
			continue
		}
		s.push(v)
	}
}

func (f *feed[T]) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for s := range f.subs {
		s.finish()
	}
	f.subs = nil
}

func (f *feed[T]) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
