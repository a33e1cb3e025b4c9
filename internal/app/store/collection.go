package store

import (
	"context"
	"slices"

	"alumnilink/internal/app/entity"
)

// Collection is a list of records of one entity type stored under a single key.
type Collection[T entity.Entity] struct {
	store *Store
	key   string
	seed  func() []T
}

// NewCollection binds key to s. seed produces the initial records; it may be nil
// for collections that start empty.
func NewCollection[T entity.Entity](s *Store, key string, seed func() []T) *Collection[T] {
	if seed == nil {
		seed = func() []T { return []T{} }
	}
	return &Collection[T]{store: s, key: key, seed: seed}
}

// Key returns the storage key.
func (c *Collection[T]) Key() string { return c.key }

// List returns every record in stored order.
func (c *Collection[T]) List(ctx context.Context) []T {
	return Load(ctx, c.store, c.key, c.seed)
}

// Get returns the record with id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool) {
	return Find(c.List(ctx), id)
}

// Mutate applies fn to the stored records under the key's lock and saves the result.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	return Update(ctx, c.store, c.key, c.seed, fn)
}

// Create prepends item. It fails with ErrDuplicateID when the id is taken.
func (c *Collection[T]) Create(ctx context.Context, item T) error {
	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		if _, exists := Find(items, item.EntityID()); exists {
			return nil, ErrDuplicateID
		}
		return Prepend(items, item), nil
	})
	return err
}

// Update replaces the record with item's id in place. It fails with ErrNotFound
// when no record has that id.
func (c *Collection[T]) Update(ctx context.Context, item T) error {
	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		next, ok := ReplaceByID(items, item)
		if !ok {
			return nil, ErrNotFound
		}
		return next, nil
	})
	return err
}

// Delete removes the record with id. It fails with ErrNotFound when absent.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		next, ok := RemoveByID(items, id)
		if !ok {
			return nil, ErrNotFound
		}
		return next, nil
	})
	return err
}

// Upsert replaces the record with item's id, or appends item when absent.
// It reports whether item was added.
func (c *Collection[T]) Upsert(ctx context.Context, item T) (bool, error) {
	var created bool
	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		next, ok := ReplaceByID(items, item)
		if ok {
			return next, nil
		}
		created = true
		return append(items, item), nil
	})
	return created, err
}

// Merge prepends the records whose ids are not stored yet, keeping their order,
// and returns the records that were added.
func (c *Collection[T]) Merge(ctx context.Context, incoming []T) ([]T, error) {
	var added []T
	_, err := c.Mutate(ctx, func(items []T) ([]T, error) {
		var next []T
		next, added = MergeNew(items, incoming)
		return next, nil
	})
	return added, err
}

// Find returns the first record with id.
func Find[T entity.Entity](items []T, id string) (T, bool) {
	i := slices.IndexFunc(items, func(item T) bool { return item.EntityID() == id })
	if i < 0 {
		var zero T
		return zero, false
	}
	return items[i], true
}

// Prepend returns a new slice with item first.
func Prepend[T any](items []T, item T) []T {
	next := make([]T, 0, len(items)+1)
	next = append(next, item)
	return append(next, items...)
}

// ReplaceByID returns a copy of items with the record sharing item's id replaced.
func ReplaceByID[T entity.Entity](items []T, item T) ([]T, bool) {
	i := slices.IndexFunc(items, func(existing T) bool { return existing.EntityID() == item.EntityID() })
	if i < 0 {
		return items, false
	}
	next := slices.Clone(items)
	next[i] = item
	return next, true
}

// RemoveByID returns a copy of items without the first record with id.
func RemoveByID[T entity.Entity](items []T, id string) ([]T, bool) {
	i := slices.IndexFunc(items, func(item T) bool { return item.EntityID() == id })
	if i < 0 {
		return items, false
	}
	return slices.Delete(slices.Clone(items), i, i+1), true
}

// MergeNew prepends the incoming records whose ids are not in items (or earlier
// in incoming) and returns the merged slice plus the records added.
func MergeNew[T entity.Entity](items, incoming []T) ([]T, []T) {
	seen := make(map[string]bool, len(items)+len(incoming))
	for _, item := range items {
		seen[item.EntityID()] = true
	}

	added := make([]T, 0, len(incoming))
	for _, item := range incoming {
		if seen[item.EntityID()] {
			continue
		}
		seen[item.EntityID()] = true
		added = append(added, item)
	}

	if len(added) == 0 {
		return items, added
	}

	next := make([]T, 0, len(added)+len(items))
	next = append(next, added...)
	return append(next, items...), added
}
