// Package file implements repository.SortableRepository over a single JSON
// or YAML file.
//
// The whole collection is held in memory and written back wholesale after
// every mutation. Writes go to a temporary file in the same directory which
// is then renamed over the original, so a failed write leaves both the file
// and the in-memory state untouched.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"clientrepo/internal/codec"
	"clientrepo/internal/domain"
	"clientrepo/internal/repository"

	"go.uber.org/zap"
)

// PrimaryField is the field SortByPrimaryField orders by
type PrimaryField struct {
	Name  string
	Value func(domain.Client) string
}

var (
	// EmailField is the primary field of JSON repositories
	EmailField = PrimaryField{Name: "email", Value: func(c domain.Client) string { return c.Email }}
	// SurnameField is the primary field of YAML repositories
	SurnameField = PrimaryField{Name: "surname", Value: func(c domain.Client) string { return c.Surname }}
)

// Option configures a Repository
type Option func(*Repository)

// WithLogger sets the logger used for load warnings
func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// Repository is a file-backed client repository
type Repository struct {
	mu      sync.RWMutex
	path    string
	codec   codec.Codec
	primary PrimaryField
	clients []domain.Client
	logger  *zap.Logger
}

var _ repository.SortableRepository = (*Repository)(nil)

// New creates a repository over path and loads it. A missing or unreadable
// file yields an empty collection.
func New(path string, c codec.Codec, primary PrimaryField, opts ...Option) *Repository {
	r := &Repository{
		path:    path,
		codec:   c,
		primary: primary,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.clients = r.load()
	return r
}

// NewJSON creates a JSON repository ordered by email
func NewJSON(path string, opts ...Option) *Repository {
	return New(path, codec.NewJSONCodec(), EmailField, opts...)
}

// NewYAML creates a YAML repository ordered by surname
func NewYAML(path string, opts ...Option) *Repository {
	return New(path, codec.NewYAMLCodec(), SurnameField, opts...)
}

// Path returns the backing file path
func (r *Repository) Path() string {
	return r.path
}

// Format returns the file format name
func (r *Repository) Format() string {
	return r.codec.Format()
}

// Reload re-reads the backing file, discarding the in-memory state.
// The lock is held across the read so a concurrent write cannot be lost.
func (r *Repository) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = r.load()
	return nil
}

// ReadAll returns a copy of every client in file order
func (r *Repository) ReadAll(ctx context.Context) ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.clients), nil
}

// GetByID returns the client with the given ID, or nil if absent
func (r *Repository) GetByID(ctx context.Context, id domain.ID) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := repository.IndexOf(r.clients, id)
	if idx < 0 {
		return nil, nil
	}
	c := r.clients[idx].Clone()
	return &c, nil
}

// GetPage returns the short projection of one page in file order
func (r *Repository) GetPage(ctx context.Context, page, size int) ([]domain.ShortInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return repository.Paginate(r.clients, page, size), nil
}

// Count returns the number of clients
func (r *Repository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients), nil
}

// Add appends the client under the next numeric ID and persists the file
func (r *Repository) Add(ctx context.Context, c domain.Client) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := c.Clone()
	created.ID = repository.NextID(r.clients)

	next := make([]domain.Client, len(r.clients), len(r.clients)+1)
	copy(next, r.clients)
	next = append(next, created)

	if err := r.commit(next); err != nil {
		return nil, err
	}
	out := created.Clone()
	return &out, nil
}

// ReplaceByID swaps the stored client for c, keeping its position and ID
func (r *Repository) ReplaceByID(ctx context.Context, id domain.ID, c domain.Client) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := repository.IndexOf(r.clients, id)
	if idx < 0 {
		return false, nil
	}

	replacement := c.Clone()
	replacement.ID = id

	next := make([]domain.Client, len(r.clients))
	copy(next, r.clients)
	next[idx] = replacement

	if err := r.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByID removes the client with the given ID
func (r *Repository) DeleteByID(ctx context.Context, id domain.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := repository.IndexOf(r.clients, id)
	if idx < 0 {
		return false, nil
	}

	next := make([]domain.Client, 0, len(r.clients)-1)
	next = append(next, r.clients[:idx]...)
	next = append(next, r.clients[idx+1:]...)

	if err := r.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// SortByPrimaryField reorders the collection by the primary field and
// persists the new order. Absent values sort first.
func (r *Repository) SortByPrimaryField(ctx context.Context, reverse bool) (repository.Ordering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domain.Client, len(r.clients))
	copy(next, r.clients)

	value := r.primary.Value
	sort.SliceStable(next, func(i, j int) bool {
		if reverse {
			return value(next[i]) > value(next[j])
		}
		return value(next[i]) < value(next[j])
	})

	if err := r.commit(next); err != nil {
		return "", err
	}
	return repository.OrderingPersisted, nil
}

// commit writes next to disk and only then replaces the in-memory state.
// Callers hold r.mu.
func (r *Repository) commit(next []domain.Client) error {
	if err := r.write(next); err != nil {
		return err
	}
	r.clients = next
	return nil
}

func (r *Repository) load() []domain.Client {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("client file does not exist, starting empty", zap.String("path", r.path))
		} else {
			r.logger.Warn("failed to open client file, starting empty", zap.String("path", r.path), zap.Error(err))
		}
		return []domain.Client{}
	}
	defer f.Close()

	clients, err := r.codec.Decode(f)
	if err != nil {
		r.logger.Warn("failed to parse client file, starting empty",
			zap.String("path", r.path),
			zap.String("format", r.codec.Format()),
			zap.Error(err),
		)
		return []domain.Client{}
	}
	return clients
}

func (r *Repository) write(clients []domain.Client) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	// CreateTemp uses 0600; keep the mode of the file being replaced
	mode := os.FileMode(0o644)
	if info, err := os.Stat(r.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}

	if err := r.codec.Encode(clients, tmp); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", r.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", r.path, err)
	}
	return nil
}

func cloneAll(clients []domain.Client) []domain.Client {
	out := make([]domain.Client, len(clients))
	for i, c := range clients {
		out[i] = c.Clone()
	}
	return out
}
