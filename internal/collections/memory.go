package collections

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository[T Record] struct {
	desc Descriptor[T]
	now  func() time.Time

	mu      sync.RWMutex
	records map[uuid.UUID]T
}

// NewMemoryRepository constructs an in-memory repository for desc.
func NewMemoryRepository[T Record](desc Descriptor[T]) Repository[T] {
	return &memoryRepository[T]{
		desc:    desc,
		now:     time.Now,
		records: make(map[uuid.UUID]T),
	}
}

func (m *memoryRepository[T]) List(_ context.Context, opts ListOptions) ([]T, error) {
	if err := m.desc.checkOptions(opts); err != nil {
		return nil, err
	}

	m.mu.RLock()
	type row struct {
		record T
		fields map[string]any
	}
	rows := make([]row, 0, len(m.records))
	for _, record := range m.records {
		fields, err := toFields(record)
		if err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		if !matches(fields, opts.Filter) {
			continue
		}
		rows = append(rows, row{record: m.desc.clone(record), fields: fields})
	}
	m.mu.RUnlock()

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = createdAtColumn
	}
	sort.SliceStable(rows, func(i, j int) bool {
		cmp := compareValues(rows[i].fields[orderBy], rows[j].fields[orderBy])
		if cmp == 0 {
			cmp = compareValues(rows[i].fields["id"], rows[j].fields["id"])
		}
		if opts.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.record
	}
	return out, nil
}

func (m *memoryRepository[T]) Get(_ context.Context, id uuid.UUID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		var zero T
		return zero, m.desc.notFound(id.String())
	}
	return m.desc.clone(record), nil
}

func (m *memoryRepository[T]) Find(_ context.Context, key string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if record, ok := m.findLocked(key); ok {
		return m.desc.clone(record), nil
	}
	var zero T
	return zero, m.desc.notFound(key)
}

func (m *memoryRepository[T]) Insert(_ context.Context, record T) (T, error) {
	var zero T
	stored := m.desc.clone(record)
	if stored.GetID() == uuid.Nil {
		stored.SetID(uuid.New())
	}
	stored.Touch(m.now())
	if err := stored.Validate(); err != nil {
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[stored.GetID()]; exists {
		return zero, fmt.Errorf("%w: %s %s", ErrDuplicate, m.desc.Resource, stored.GetID())
	}
	if key := m.desc.Key(stored); key != "" {
		if _, taken := m.findLocked(key); taken {
			return zero, fmt.Errorf("%w: %s %q", ErrDuplicate, m.desc.Resource, key)
		}
	}
	m.records[stored.GetID()] = stored
	return m.desc.clone(stored), nil
}

func (m *memoryRepository[T]) Update(_ context.Context, id uuid.UUID, patch map[string]any) (T, error) {
	var zero T
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[id]
	if !ok {
		return zero, m.desc.notFound(id.String())
	}
	updated := m.desc.clone(existing)
	if _, err := m.desc.applyPatch(updated, patch); err != nil {
		return zero, err
	}
	updated.SetID(id)
	updated.Touch(m.now())
	if err := updated.Validate(); err != nil {
		return zero, err
	}
	if key := m.desc.Key(updated); key != "" {
		if other, taken := m.findLocked(key); taken && other.GetID() != id {
			return zero, fmt.Errorf("%w: %s %q", ErrDuplicate, m.desc.Resource, key)
		}
	}
	m.records[id] = updated
	return m.desc.clone(updated), nil
}

func (m *memoryRepository[T]) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return m.desc.notFound(id.String())
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRepository[T]) findLocked(key string) (T, bool) {
	normalized := normalizeKey(key)
	for _, record := range m.records {
		if normalizeKey(m.desc.Key(record)) == normalized {
			return record, true
		}
	}
	var zero T
	return zero, false
}

func matches(fields map[string]any, filter map[string]any) bool {
	for column, want := range filter {
		if compareValues(fields[column], normalizeFilterValue(want)) != 0 {
			return false
		}
	}
	return true
}

// normalizeFilterValue converts a Go filter value to its JSON-decoded form.
func normalizeFilterValue(value any) any {
	switch typed := value.(type) {
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case uuid.UUID:
		return typed.String()
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	default:
		return value
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	if b == nil {
		return 1
	}
	if at, bt, ok := parseTimes(a, b); ok {
		return at.Compare(bt)
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func parseTimes(a, b any) (time.Time, time.Time, bool) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return time.Time{}, time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, as)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	bt, err := time.Parse(time.RFC3339Nano, bs)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return at, bt, true
}
