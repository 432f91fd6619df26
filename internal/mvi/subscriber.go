package mvi

import "sync"

// subscriber delivers values to one observer through an unbounded queue,
// so a slow reader never blocks Update or the other observers.
type subscriber[S any] struct {
	mu    sync.Mutex
	queue []S

	wake chan struct{}
	done chan struct{}
	out  chan S

	stopOnce sync.Once
}

func newSubscriber[S any]() *subscriber[S] {
	return &subscriber[S]{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan S),
	}
}

func (s *subscriber[S]) push(v S) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber[S]) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *subscriber[S]) run() {
	defer close(s.out)
	var zero S
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
