package collections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnknownColumn is returned for patch keys, filters or orderings
	// outside a table's column allowlist.
	ErrUnknownColumn = errors.New("collections: unknown column")
	// ErrInvalidPatch is returned when a patch value has the wrong type.
	ErrInvalidPatch = errors.New("collections: invalid patch")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("collections: duplicate record")
	// ErrUnknownTable is returned for table names outside the catalog.
	ErrUnknownTable = errors.New("collections: unknown table")
)

// NotFoundError is returned when a record cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ListOptions controls ordering, filtering and size of a listing. Column
// names are checked against the table allowlist.
type ListOptions struct {
	OrderBy    string
	Descending bool
	Limit      int
	Filter     map[string]any
}

// Repository is the data-access contract shared by every collection.
type Repository[T Record] interface {
	List(ctx context.Context, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (T, error)
	// Find looks a record up by the table's unique key (slug, email or
	// section).
	Find(ctx context.Context, key string) (T, error)
	Insert(ctx context.Context, record T) (T, error)
	// Update applies patch, keyed by column name, to the record with id.
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Descriptor describes one table.
type Descriptor[T Record] struct {
	Table string
	// Resource names the record in errors.
	Resource string
	// KeyColumn is the unique lookup column used by Find.
	KeyColumn string
	Key       func(T) string
	// Columns lists the columns a patch may write.
	Columns []string
	New     func() T
	// CacheNamespace is the snake-cased model name go-repository-cache
	// prefixes its keys with.
	CacheNamespace string
}

const createdAtColumn = "created_at"

func (d Descriptor[T]) writable(column string) bool {
	return slices.Contains(d.Columns, column)
}

func (d Descriptor[T]) readable(column string) bool {
	return column == createdAtColumn || column == "updated_at" || column == "id" || d.writable(column)
}

func (d Descriptor[T]) notFound(key string) error {
	return &NotFoundError{Resource: d.Resource, Key: key}
}

func (d Descriptor[T]) checkOptions(opts ListOptions) error {
	if opts.OrderBy != "" && !d.readable(opts.OrderBy) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, d.Table, opts.OrderBy)
	}
	for column := range opts.Filter {
		if !d.readable(column) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, d.Table, column)
		}
	}
	return nil
}

// patchColumns validates patch keys and returns them sorted.
func (d Descriptor[T]) patchColumns(patch map[string]any) ([]string, error) {
	columns := make([]string, 0, len(patch))
	for column := range patch {
		if !d.writable(column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, d.Table, column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns, nil
}

// applyPatch overlays patch onto record through its JSON form, whose keys
// match the column names.
func (d Descriptor[T]) applyPatch(record T, patch map[string]any) ([]string, error) {
	columns, err := d.patchColumns(patch)
	if err != nil {
		return nil, err
	}
	fields, err := toFields(record)
	if err != nil {
		return nil, err
	}
	for column, value := range patch {
		fields[column] = value
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if err := json.Unmarshal(merged, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return columns, nil
}

// clone deep-copies record through its JSON form.
func (d Descriptor[T]) clone(record T) T {
	out := d.New()
	encoded, err := json.Marshal(record)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(encoded, out)
	return out
}

func toFields(record any) (map[string]any, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
