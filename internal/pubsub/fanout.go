package pubsub

import "sync"

// fanout is the local subscriber list shared by the NATS-backed brokers
type fanout struct {
	mu          sync.RWMutex
	subscribers []chan Event
	buffer      int
}

func (f *fanout) subscribe() chan Event {
	ch := make(chan Event, f.buffer)
	f.mu.Lock()
	f.subscribers = append(f.subscribers, ch)
	f.mu.Unlock()
	return ch
}

func (f *fanout) unsubscribe(ch chan Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, sub := range f.subscribers {
		if sub == ch {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			close(ch)
			return true
		}
	}
	return false
}

// broadcast delivers ev without blocking and returns how many slow
// subscribers were skipped
func (f *fanout) broadcast(ev Event) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	skipped := 0
	for _, sub := range f.subscribers {
		select {
		case sub <- ev:
		default:
			skipped++
		}
	}
	return skipped
}

func (f *fanout) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subscribers {
		close(sub)
	}
	f.subscribers = nil
}
