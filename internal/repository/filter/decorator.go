// Package filter provides a repository wrapper that filters and sorts reads
// without touching the underlying storage.
//
// Filters and the sort key are re-applied to a fresh ReadAll of the wrapped
// repository on every read, so GetPage and Count always reflect the current
// data as seen through the active criteria. Writes are delegated unchanged.
package filter

import (
	"context"
	"sync"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository"
)

// Decorator wraps a repository with filtering and sorting
type Decorator struct {
	inner repository.Repository

	mu      sync.RWMutex
	filters []Filter
	sortKey *SortKey
}

var _ repository.SortableRepository = (*Decorator)(nil)

// New wraps inner with no filters and no sort
func New(inner repository.Repository) *Decorator {
	return &Decorator{inner: inner}
}

// AddFilter appends a filter. Filters apply in the order added.
func (d *Decorator) AddFilter(f Filter) *Decorator {
	d.mu.Lock()
	d.filters = append(d.filters, f)
	d.mu.Unlock()
	return d
}

// SetSort replaces the sort key
func (d *Decorator) SetSort(k SortKey) *Decorator {
	d.mu.Lock()
	d.sortKey = &k
	d.mu.Unlock()
	return d
}

// ClearFilters removes every filter
func (d *Decorator) ClearFilters() {
	d.mu.Lock()
	d.filters = nil
	d.mu.Unlock()
}

// ClearSort removes the sort key
func (d *Decorator) ClearSort() {
	d.mu.Lock()
	d.sortKey = nil
	d.mu.Unlock()
}

// Filters returns the active filters
func (d *Decorator) Filters() []Filter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Filter, len(d.filters))
	copy(out, d.filters)
	return out
}

// Sort returns the active sort key, or nil
func (d *Decorator) Sort() *SortKey {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.sortKey == nil {
		return nil
	}
	k := *d.sortKey
	return &k
}

// ReadAll returns the filtered and sorted view of the wrapped repository
func (d *Decorator) ReadAll(ctx context.Context) ([]domain.Client, error) {
	clients, err := d.inner.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	filters := d.filters
	sortKey := d.sortKey
	d.mu.RUnlock()

	for _, f := range filters {
		clients = f.Apply(clients)
	}
	if sortKey != nil {
		clients = sortKey.Apply(clients)
	}
	return clients, nil
}

// GetPage paginates the filtered and sorted view
func (d *Decorator) GetPage(ctx context.Context, page, size int) ([]domain.ShortInfo, error) {
	clients, err := d.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return repository.Paginate(clients, page, size), nil
}

// Count counts the filtered view
func (d *Decorator) Count(ctx context.Context) (int, error) {
	clients, err := d.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(clients), nil
}

// GetByID delegates without filtering
func (d *Decorator) GetByID(ctx context.Context, id domain.ID) (*domain.Client, error) {
	return d.inner.GetByID(ctx, id)
}

// Add delegates
func (d *Decorator) Add(ctx context.Context, c domain.Client) (*domain.Client, error) {
	return d.inner.Add(ctx, c)
}

// ReplaceByID delegates
func (d *Decorator) ReplaceByID(ctx context.Context, id domain.ID, c domain.Client) (bool, error) {
	return d.inner.ReplaceByID(ctx, id, c)
}

// DeleteByID delegates
func (d *Decorator) DeleteByID(ctx context.Context, id domain.ID) (bool, error) {
	return d.inner.DeleteByID(ctx, id)
}

// SortByPrimaryField delegates when the wrapped repository supports it
func (d *Decorator) SortByPrimaryField(ctx context.Context, reverse bool) (repository.Ordering, error) {
	s, ok := d.inner.(repository.Sorter)
	if !ok {
		return "", repository.ErrSortUnsupported
	}
	return s.SortByPrimaryField(ctx, reverse)
}

// Reload delegates when the wrapped repository supports it
func (d *Decorator) Reload(ctx context.Context) error {
	if r, ok := d.inner.(repository.Reloader); ok {
		return r.Reload(ctx)
	}
	return nil
}
