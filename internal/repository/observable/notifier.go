// Package observable wraps a repository so that completed reads and writes
// are pushed to subscribed observers.
//
// Delivery is synchronous and in subscription order: every observer has
// seen the event before the wrapped call returns. An observer that panics
// is logged and skipped; the remaining observers still run and the caller
// still gets the operation's own result.
package observable

import (
	"context"
	"reflect"
	"sync"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository"

	"go.uber.org/zap"
)

// Notifier is a repository wrapper that emits events
type Notifier struct {
	inner  repository.Repository
	logger *zap.Logger

	mu        sync.RWMutex
	observers []*subscription
}

type subscription struct {
	observer Observer
}

var _ repository.SortableRepository = (*Notifier)(nil)

// New wraps inner. The logger may be nil.
func New(inner repository.Repository, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{inner: inner, logger: logger}
}

// Subscribe registers o and returns a function that removes this
// registration. Subscribing the same comparable observer twice is a no-op.
func (n *Notifier) Subscribe(o Observer) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range n.observers {
		if sameObserver(s.observer, o) {
			return func() { n.remove(s) }
		}
	}
	s := &subscription{observer: o}
	n.observers = append(n.observers, s)
	return func() { n.remove(s) }
}

// Unsubscribe removes o. Unknown or non-comparable observers are ignored;
// use the function returned by Subscribe for those.
func (n *Notifier) Unsubscribe(o Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.observers {
		if sameObserver(s.observer, o) {
			n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
			return
		}
	}
}

// ObserverCount returns the number of subscribers
func (n *Notifier) ObserverCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

func (n *Notifier) remove(target *subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.observers {
		if s == target {
			n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
			return
		}
	}
}

func sameObserver(a, b Observer) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func (n *Notifier) notify(ctx context.Context, ev Event) {
	n.mu.RLock()
	subs := make([]*subscription, len(n.observers))
	copy(subs, n.observers)
	n.mu.RUnlock()

	// Each observer gets its own copy so it cannot alter what the caller receives
	for _, s := range subs {
		n.deliver(ctx, s.observer, ev.detached())
	}
}

func (n *Notifier) deliver(ctx context.Context, o Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("observer failed",
				zap.String("event", string(ev.Type)),
				zap.String("observer", reflect.TypeOf(o).String()),
				zap.Any("panic", r),
			)
		}
	}()
	o.Update(ctx, ev)
}

// ReadAll emits clients_loaded
func (n *Notifier) ReadAll(ctx context.Context) ([]domain.Client, error) {
	clients, err := n.inner.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	n.notify(ctx, Event{Type: EventClientsLoaded, Payload: clients})
	return clients, nil
}

// GetByID emits client_loaded, with a nil payload when absent
func (n *Notifier) GetByID(ctx context.Context, id domain.ID) (*domain.Client, error) {
	c, err := n.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n.notify(ctx, Event{Type: EventClientLoaded, Payload: c})
	return c, nil
}

// GetPage passes through without an event
func (n *Notifier) GetPage(ctx context.Context, page, size int) ([]domain.ShortInfo, error) {
	return n.inner.GetPage(ctx, page, size)
}

// Count passes through without an event
func (n *Notifier) Count(ctx context.Context) (int, error) {
	return n.inner.Count(ctx)
}

// Add emits client_added with the stored client
func (n *Notifier) Add(ctx context.Context, c domain.Client) (*domain.Client, error) {
	created, err := n.inner.Add(ctx, c)
	if err != nil {
		return nil, err
	}
	n.notify(ctx, Event{Type: EventClientAdded, Payload: created})
	return created, nil
}

// ReplaceByID emits client_updated with the client as re-read after the write
func (n *Notifier) ReplaceByID(ctx context.Context, id domain.ID, c domain.Client) (bool, error) {
	ok, err := n.inner.ReplaceByID(ctx, id, c)
	if err != nil || !ok {
		return ok, err
	}

	updated, err := n.inner.GetByID(ctx, id)
	if err != nil || updated == nil {
		n.logger.Warn("failed to reload updated client", zap.Stringer("id", id), zap.Error(err))
		fallback := c.Clone()
		fallback.ID = id
		updated = &fallback
	}
	n.notify(ctx, Event{Type: EventClientUpdated, Payload: updated})
	return true, nil
}

// DeleteByID emits client_deleted with the id
func (n *Notifier) DeleteByID(ctx context.Context, id domain.ID) (bool, error) {
	ok, err := n.inner.DeleteByID(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	n.notify(ctx, Event{Type: EventClientDeleted, Payload: id})
	return true, nil
}

// SortByPrimaryField passes through when supported
func (n *Notifier) SortByPrimaryField(ctx context.Context, reverse bool) (repository.Ordering, error) {
	s, ok := n.inner.(repository.Sorter)
	if !ok {
		return "", repository.ErrSortUnsupported
	}
	return s.SortByPrimaryField(ctx, reverse)
}

// Reload passes through when supported
func (n *Notifier) Reload(ctx context.Context) error {
	if r, ok := n.inner.(repository.Reloader); ok {
		return r.Reload(ctx)
	}
	return nil
}
