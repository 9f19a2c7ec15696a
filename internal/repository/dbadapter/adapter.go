// Package dbadapter exposes a query-backed store through the same
// contract as the file repositories.
//
// The store has no in-memory mirror, so sorting cannot be persisted.
// SortByPrimaryField instead keeps a transient surname-ordered copy that
// ReadAll serves until the next Reload or mutation through the adapter.
package dbadapter

import (
	"context"
	"sort"
	"sync"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository"
	"clientrepo/internal/repository/sqlstore"
)

// Adapter wraps a sqlstore.Store
type Adapter struct {
	store *sqlstore.Store

	mu     sync.RWMutex
	sorted []domain.Client
}

var (
	_ repository.SortableRepository = (*Adapter)(nil)
	_ repository.Reloader           = (*Adapter)(nil)
)

// New creates an adapter over store
func New(store *sqlstore.Store) *Adapter {
	return &Adapter{store: store}
}

// Store returns the wrapped store
func (a *Adapter) Store() *sqlstore.Store {
	return a.store
}

// ReadAll returns the sorted view when one is active, otherwise every row by id
func (a *Adapter) ReadAll(ctx context.Context) ([]domain.Client, error) {
	a.mu.RLock()
	sorted := a.sorted
	a.mu.RUnlock()

	if sorted != nil {
		out := make([]domain.Client, len(sorted))
		for i, c := range sorted {
			out[i] = c.Clone()
		}
		return out, nil
	}
	return a.store.ReadAll(ctx)
}

// GetByID passes through to the store
func (a *Adapter) GetByID(ctx context.Context, id domain.ID) (*domain.Client, error) {
	return a.store.GetByID(ctx, id)
}

// GetPage passes through to the store, so pages follow id order
func (a *Adapter) GetPage(ctx context.Context, page, size int) ([]domain.ShortInfo, error) {
	return a.store.GetPage(ctx, page, size)
}

// Count passes through to the store
func (a *Adapter) Count(ctx context.Context) (int, error) {
	return a.store.Count(ctx)
}

// Add inserts through the store and drops the sorted view
func (a *Adapter) Add(ctx context.Context, c domain.Client) (*domain.Client, error) {
	created, err := a.store.Add(ctx, c)
	if err != nil {
		return nil, err
	}
	a.invalidate()
	return created, nil
}

// ReplaceByID updates through the store and drops the sorted view
func (a *Adapter) ReplaceByID(ctx context.Context, id domain.ID, c domain.Client) (bool, error) {
	ok, err := a.store.ReplaceByID(ctx, id, c)
	if err != nil {
		return false, err
	}
	if ok {
		a.invalidate()
	}
	return ok, nil
}

// DeleteByID deletes through the store and drops the sorted view
func (a *Adapter) DeleteByID(ctx context.Context, id domain.ID) (bool, error) {
	ok, err := a.store.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		a.invalidate()
	}
	return ok, nil
}

// SortByPrimaryField loads every row and keeps a surname-ordered view.
// Storage order is unaffected.
func (a *Adapter) SortByPrimaryField(ctx context.Context, reverse bool) (repository.Ordering, error) {
	clients, err := a.store.ReadAll(ctx)
	if err != nil {
		return "", err
	}

	sort.SliceStable(clients, func(i, j int) bool {
		if reverse {
			return clients[i].Surname > clients[j].Surname
		}
		return clients[i].Surname < clients[j].Surname
	})

	a.mu.Lock()
	a.sorted = clients
	a.mu.Unlock()
	return repository.OrderingTransient, nil
}

// Reload drops the sorted view so reads hit the store again
func (a *Adapter) Reload(ctx context.Context) error {
	a.invalidate()
	return nil
}

func (a *Adapter) invalidate() {
	a.mu.Lock()
	a.sorted = nil
	a.mu.Unlock()
}
