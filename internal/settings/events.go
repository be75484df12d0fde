package settings

import (
	"context"
	"sync"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// changeBroadcaster fans change events out to subscribers. Slow subscribers
// miss events rather than block writers.
type changeBroadcaster struct {
	mu       sync.Mutex
	watchers map[uint64]chan interfaces.ConfigChange
	nextID   uint64
}

func newChangeBroadcaster() *changeBroadcaster {
	return &changeBroadcaster{watchers: make(map[uint64]chan interfaces.ConfigChange)}
}

func (b *changeBroadcaster) Subscribe(ctx context.Context) (<-chan interfaces.ConfigChange, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		ch := make(chan interfaces.ConfigChange)
		close(ch)
		return ch, nil
	}

	ch := make(chan interfaces.ConfigChange, 8)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.watchers, id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

func (b *changeBroadcaster) Broadcast(evt interfaces.ConfigChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers {
		select {
		case ch <- evt:
		default:
		}
	}
}
