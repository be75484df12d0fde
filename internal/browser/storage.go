package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const defaultPollInterval = 500 * time.Millisecond

const (
	storageGetJS    = `(key) => window.localStorage.getItem(key)`
	storageSetJS    = `(key, value) => { window.localStorage.setItem(key, value); }`
	storageDeleteJS = `(key) => {
	const existed = window.localStorage.getItem(key) !== null;
	window.localStorage.removeItem(key);
	return existed;
}`
	storageSnapshotJS = `() => {
	const out = {};
	for (let i = 0; i < window.localStorage.length; i++) {
		const key = window.localStorage.key(i);
		out[key] = window.localStorage.getItem(key);
	}
	return JSON.stringify(out);
}`
)

// LocalStorage is an interfaces.ConfigStore over the page's localStorage.
// Changes made by page scripts are picked up by polling.
type LocalStorage struct {
	page     *Page
	interval time.Duration
}

var _ interfaces.ConfigStore = (*LocalStorage)(nil)

// LocalStorageOption configures LocalStorage.
type LocalStorageOption func(*LocalStorage)

// WithPollInterval sets how often Subscribe compares snapshots.
func WithPollInterval(d time.Duration) LocalStorageOption {
	return func(s *LocalStorage) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewLocalStorage returns a store backed by page.
func NewLocalStorage(page *Page, opts ...LocalStorageOption) *LocalStorage {
	s := &LocalStorage{page: page, interval: defaultPollInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *LocalStorage) Get(ctx context.Context, key string) (string, error) {
	res, err := s.page.eval(ctx, storageGetJS, key)
	if err != nil {
		return "", err
	}
	if res.Value.Nil() {
		return "", interfaces.ErrConfigNotFound
	}
	return res.Value.Str(), nil
}

func (s *LocalStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.page.eval(ctx, storageSetJS, key, value)
	return err
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	res, err := s.page.eval(ctx, storageDeleteJS, key)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return interfaces.ErrConfigNotFound
	}
	return nil
}

func (s *LocalStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Subscribe polls localStorage and reports keys that were added, changed or
// removed between snapshots. The channel closes when ctx is done.
func (s *LocalStorage) Subscribe(ctx context.Context) (<-chan interfaces.ConfigChange, error) {
	previous, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ch := make(chan interfaces.ConfigChange, 8)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			current, err := s.snapshot(ctx)
			if err != nil {
				continue
			}
			for _, change := range diffSnapshots(previous, current, time.Now()) {
				select {
				case ch <- change:
				case <-ctx.Done():
					return
				}
			}
			previous = current
		}
	}()
	return ch, nil
}

func (s *LocalStorage) snapshot(ctx context.Context) (map[string]string, error) {
	res, err := s.page.eval(ctx, storageSnapshotJS)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return nil, fmt.Errorf("browser: decode localStorage: %w", err)
	}
	return out, nil
}

// diffSnapshots returns the changes from before to after ordered by key.
func diffSnapshots(before, after map[string]string, at time.Time) []interfaces.ConfigChange {
	var changes []interfaces.ConfigChange
	for key, value := range after {
		old, existed := before[key]
		switch {
		case !existed:
			changes = append(changes, interfaces.ConfigChange{Type: interfaces.ConfigCreated, Key: key, At: at})
		case old != value:
			changes = append(changes, interfaces.ConfigChange{Type: interfaces.ConfigUpdated, Key: key, At: at})
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			changes = append(changes, interfaces.ConfigChange{Type: interfaces.ConfigDeleted, Key: key, At: at})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}
