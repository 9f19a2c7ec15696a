package repository

import (
	"context"
	"errors"
	"math"

	"clientrepo/internal/domain"
)

// ErrSortUnsupported is returned when the underlying store cannot sort
var ErrSortUnsupported = errors.New("sort by primary field not supported")

// Repository defines the uniform contract for client data access
type Repository interface {
	// Read operations
	ReadAll(ctx context.Context) ([]domain.Client, error)
	GetByID(ctx context.Context, id domain.ID) (*domain.Client, error)
	GetPage(ctx context.Context, page, size int) ([]domain.ShortInfo, error)
	Count(ctx context.Context) (int, error)

	// Write operations
	Add(ctx context.Context, c domain.Client) (*domain.Client, error)
	ReplaceByID(ctx context.Context, id domain.ID, c domain.Client) (bool, error)
	DeleteByID(ctx context.Context, id domain.ID) (bool, error)
}

// Ordering tells whether a sort changed storage or only the current view
type Ordering string

const (
	OrderingPersisted Ordering = "persisted"
	OrderingTransient Ordering = "transient"
)

// Sorter is implemented by backends that can order by their primary field
type Sorter interface {
	SortByPrimaryField(ctx context.Context, reverse bool) (Ordering, error)
}

// SortableRepository is a Repository that also supports Sorter
type SortableRepository interface {
	Repository
	Sorter
}

// Reloader is implemented by backends that can refresh from their source
type Reloader interface {
	Reload(ctx context.Context) error
}

// Paginate returns the short projection of the 1-based page of the given size.
// Out-of-range input yields an empty slice.
func Paginate(clients []domain.Client, page, size int) []domain.ShortInfo {
	start, ok := PageOffset(page, size)
	if !ok || start >= len(clients) {
		return []domain.ShortInfo{}
	}
	end := min(start+size, len(clients))

	out := make([]domain.ShortInfo, 0, end-start)
	for _, c := range clients[start:end] {
		out = append(out, c.Short())
	}
	return out
}

// PageOffset returns the index of the first row of a 1-based page. ok is
// false for a page below 1, a non-positive size, or a page whose end would
// not fit in an int.
func PageOffset(page, size int) (offset int, ok bool) {
	if page < 1 || size <= 0 {
		return 0, false
	}
	if page-1 > (math.MaxInt-size)/size {
		return 0, false
	}
	return (page - 1) * size, true
}

// NextID returns one more than the greatest numeric ID, or 1 when there is none
func NextID(clients []domain.Client) domain.ID {
	var maxID int64
	for _, c := range clients {
		if n, ok := c.ID.Int(); ok && n > maxID {
			maxID = n
		}
	}
	return domain.IntID(maxID + 1)
}

// IndexOf returns the position of the client with the given ID, or -1
func IndexOf(clients []domain.Client, id domain.ID) int {
	for i, c := range clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}
