package settings

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// MemoryStore keeps settings in a map. It backs tests and the "memory"
// storage provider.
type MemoryStore struct {
	mu          sync.RWMutex
	values      map[string]string
	broadcaster *changeBroadcaster
	now         func() time.Time
}

var _ interfaces.ConfigStore = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:      make(map[string]string),
		broadcaster: newChangeBroadcaster(),
		now:         time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores value. Writing an identical value emits no event.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	previous, existed := s.values[key]
	s.values[key] = value
	s.mu.Unlock()

	if existed && previous == value {
		return nil
	}
	changeType := interfaces.ConfigUpdated
	if !existed {
		changeType = interfaces.ConfigCreated
	}
	s.broadcaster.Broadcast(newChange(changeType, key, s.now().UTC()))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	if _, ok := s.values[key]; !ok {
		s.mu.Unlock()
		return ErrKeyNotFound
	}
	delete(s.values, key)
	s.mu.Unlock()

	s.broadcaster.Broadcast(newChange(interfaces.ConfigDeleted, key, s.now().UTC()))
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan interfaces.ConfigChange, error) {
	return s.broadcaster.Subscribe(ctx)
}
