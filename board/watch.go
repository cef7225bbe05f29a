package board

import (
	"sync"

	"kanban-api/domain"
)

// Subscribe registers an observer that receives a snapshot after every
// effective mutation. Observers that fall behind only see the newest
// snapshot; the store never blocks on them. The returned func unsubscribes
// and closes the channel, and is safe to call more than once.
func (s *Store) Subscribe(buffer int) (<-chan domain.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Snapshot, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// notify fans the current snapshot out to watchers. Caller holds s.mu for
// writing, which also makes it the only sender on each channel.
func (s *Store) notify() {
	for _, ch := range s.watchers {
		snap := domain.Snapshot{Version: s.current.Version, Board: s.current.Board.Clone()}
		select {
		case ch <- snap:
			continue
		default:
		}
		// Full: drop the oldest pending snapshot to make room.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
