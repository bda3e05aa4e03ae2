// Package memory keeps driver and nurse updates in process memory. It backs
// the service when no database is configured.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
)

type entry[T any] struct {
	seq  uint64
	item T
}

// store is an append-only list guarded by a mutex. Items are copied in and
// out so callers never share memory with the store.
type store[T any] struct {
	mu    sync.RWMutex
	seq   uint64
	items []entry[T]
}

func (s *store[T]) add(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.seq++
		s.items = append(s.items, entry[T]{seq: s.seq, item: item})
	}
}

// list sorts a copy with less, breaking ties by newest insertion first.
func (s *store[T]) list(limit int, less func(a, b T) int) []T {
	s.mu.RLock()
	sorted := slices.Clone(s.items)
	s.mu.RUnlock()

	slices.SortFunc(sorted, func(a, b entry[T]) int {
		if c := less(a.item, b.item); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	limit = repositories.NormalizeLimit(limit)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]T, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, e.item)
	}
	return out
}

func (s *store[T]) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *store[T]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

type DriverUpdateRepository struct {
	store store[models.DriverUpdate]
}

func NewDriverUpdateRepository() *DriverUpdateRepository {
	return &DriverUpdateRepository{}
}

func (r *DriverUpdateRepository) BulkCreate(ctx context.Context, updates []*models.DriverUpdate) error {
	items := make([]models.DriverUpdate, 0, len(updates))
	for _, u := range updates {
		items = append(items, *u)
	}
	r.store.add(items...)
	return ctx.Err()
}

func (r *DriverUpdateRepository) Create(ctx context.Context, update *models.DriverUpdate) error {
	return r.BulkCreate(ctx, []*models.DriverUpdate{update})
}

func (r *DriverUpdateRepository) ListRecent(ctx context.Context, limit int) ([]*models.DriverUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := r.store.list(limit, func(a, b models.DriverUpdate) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	out := make([]*models.DriverUpdate, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (r *DriverUpdateRepository) Count(ctx context.Context) (int, error) {
	return r.store.count(), ctx.Err()
}

func (r *DriverUpdateRepository) DeleteAll(ctx context.Context) error {
	r.store.clear()
	return ctx.Err()
}

type NurseUpdateRepository struct {
	store store[models.NurseUpdate]
}

func NewNurseUpdateRepository() *NurseUpdateRepository {
	return &NurseUpdateRepository{}
}

func (r *NurseUpdateRepository) BulkCreate(ctx context.Context, updates []*models.NurseUpdate) error {
	items := make([]models.NurseUpdate, 0, len(updates))
	for _, u := range updates {
		items = append(items, *u)
	}
	r.store.add(items...)
	return ctx.Err()
}

func (r *NurseUpdateRepository) Create(ctx context.Context, update *models.NurseUpdate) error {
	return r.BulkCreate(ctx, []*models.NurseUpdate{update})
}

func (r *NurseUpdateRepository) ListRecent(ctx context.Context, limit int) ([]*models.NurseUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := r.store.list(limit, func(a, b models.NurseUpdate) int {
		if c := cmp.Compare(b.SeverityScore, a.SeverityScore); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	out := make([]*models.NurseUpdate, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (r *NurseUpdateRepository) Count(ctx context.Context) (int, error) {
	return r.store.count(), ctx.Err()
}

func (r *NurseUpdateRepository) DeleteAll(ctx context.Context) error {
	r.store.clear()
	return ctx.Err()
}

var (
	_ repositories.DriverUpdateRepository = (*DriverUpdateRepository)(nil)
	_ repositories.NurseUpdateRepository  = (*NurseUpdateRepository)(nil)
)
