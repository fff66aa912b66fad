package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/swiftrun/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store defines persistence for orders, errands, and errand reference data.
// Status updates also stamp the per-transition timestamp column named by the
// caller (see lifecycle.StampColumn).
type Store interface {
	SaveOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status, stampColumn string, at time.Time) error
	AssignOrder(ctx context.Context, id, driverID string) error
	UpdateOrderPayment(ctx context.Context, id, payStatus, payRef string) error

	SaveErrand(ctx context.Context, e *models.Errand) error
	GetErrand(ctx context.Context, id string) (*models.Errand, error)
	UpdateErrandStatus(ctx context.Context, id, status, stampColumn string, at time.Time) error
	AssignErrand(ctx context.Context, id, runnerID string) error

	ListCategories(ctx context.Context) ([]models.ErrandCategory, error)
}

// MemoryStore backs local runs and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	orders     map[string]*models.Order
	errands    map[string]*models.Errand
	stamps     map[string]map[string]time.Time
	categories []models.ErrandCategory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:  make(map[string]*models.Order),
		errands: make(map[string]*models.Errand),
		stamps:  make(map[string]map[string]time.Time),
	}
}

// SeedCategories loads reference data for local runs.
func (m *MemoryStore) SeedCategories(cats []models.ErrandCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = cats
}

func (m *MemoryStore) SaveOrder(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MemoryStore) UpdateOrderStatus(ctx context.Context, id, status, stampColumn string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	m.stamp(id, stampColumn, at)
	return nil
}

func (m *MemoryStore) AssignOrder(ctx context.Context, id, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.DriverID != "" {
		// an already-assigned order matches zero rows in the conditional
		// UPDATE the postgres store runs; same result here
		return ErrNotFound
	}
	o.DriverID = driverID
	o.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) UpdateOrderPayment(ctx context.Context, id, payStatus, payRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PayStatus = payStatus
	o.PayRef = payRef
	o.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) SaveErrand(ctx context.Context, e *models.Errand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.errands[e.ID] = &cp
	return nil
}

func (m *MemoryStore) GetErrand(ctx context.Context, id string) (*models.Errand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.errands[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryStore) UpdateErrandStatus(ctx context.Context, id, status, stampColumn string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.errands[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = at
	m.stamp(id, stampColumn, at)
	return nil
}

func (m *MemoryStore) AssignErrand(ctx context.Context, id, runnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.errands[id]
	if !ok || e.RunnerID != "" {
		return ErrNotFound
	}
	e.RunnerID = runnerID
	e.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context) ([]models.ErrandCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ErrandCategory, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

// Stamp returns a recorded transition timestamp, for tests.
func (m *MemoryStore) Stamp(id, column string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.stamps[id][column]
	return t, ok
}

func (m *MemoryStore) stamp(id, column string, at time.Time) {
	if column == "" {
		return
	}
	if m.stamps[id] == nil {
		m.stamps[id] = make(map[string]time.Time)
	}
	m.stamps[id][column] = at
}
