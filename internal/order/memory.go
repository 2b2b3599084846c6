package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is the in-memory reference implementation of Repository.
// It honors the same contracts as the Postgres implementation: order-number
// uniqueness on Create and the optimistic updatedAt check on Update. Safe for
// concurrent use.
type MemoryRepository struct {
	mu      sync.Mutex
	orders  map[string]*Order
	numbers map[string]string // order number -> order id
	history map[string][]*StatusHistoryEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders:  make(map[string]*Order),
		numbers: make(map[string]string),
		history: make(map[string][]*StatusHistoryEntry),
	}
}

func (m *MemoryRepository) Create(ctx context.Context, o *Order, first *StatusHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.numbers[o.OrderNumber]; taken {
		return ErrNumberTaken
	}

	cp := *o
	m.orders[o.ID] = &cp
	m.numbers[o.OrderNumber] = o.ID

	e := *first
	m.history[o.ID] = append(m.history[o.ID], &e)
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *MemoryRepository) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.numbers[orderNumber]
	if !ok {
		return nil, nil
	}
	cp := *m.orders[id]
	return &cp, nil
}

func (m *MemoryRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := m.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*Order, 0, end-offset)
	for _, o := range matched[offset:end] {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(filter))), nil
}

func (m *MemoryRepository) match(filter ListFilter) []*Order {
	var matched []*Order
	for _, o := range m.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.TechnicianID != nil {
			if o.TechnicianID == nil || *o.TechnicianID != *filter.TechnicianID {
				continue
			}
		} else if filter.Unassigned && o.TechnicianID != nil {
			continue
		}
		matched = append(matched, o)
	}
	return matched
}

func (m *MemoryRepository) Update(ctx context.Context, o *Order, expectedUpdatedAt time.Time, entry *StatusHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.orders[o.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if !current.UpdatedAt.Equal(expectedUpdatedAt) {
		return ErrStaleOrder
	}

	cp := *o
	m.orders[o.ID] = &cp

	if entry != nil {
		e := *entry
		m.history[o.ID] = append(m.history[o.ID], &e)
	}
	return nil
}

func (m *MemoryRepository) History(ctx context.Context, orderID string) ([]*StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.history[orderID]
	out := make([]*StatusHistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		cp := *entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	delete(m.numbers, o.OrderNumber)
	delete(m.orders, id)
	delete(m.history, id)
	return nil
}
