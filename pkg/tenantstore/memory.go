package tenantstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// Memory is an in-process registry. Stored tenants are copied on the way in
// and out so callers never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*tenant.Tenant
	now     func() time.Time
}

func NewMemory(seed ...*tenant.Tenant) *Memory {
	m := &Memory{
		tenants: make(map[uuid.UUID]*tenant.Tenant, len(seed)),
		now:     time.Now,
	}
	for _, t := range seed {
		cp := *t
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		m.tenants[cp.ID] = &cp
	}
	return m
}

func (m *Memory) Lookup(_ context.Context, q tenant.Lookup) ([]*tenant.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*tenant.Tenant
	for _, t := range m.tenants {
		if q.Matches(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *Memory) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

// Create stores t, assigning an ID and timestamps when they are unset.
func (m *Memory) Create(_ context.Context, t *tenant.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if _, ok := m.tenants[t.ID]; ok || m.conflicts(t) {
		return ErrDuplicate
	}
	now := m.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

func (m *Memory) Update(_ context.Context, t *tenant.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.tenants[t.ID]
	if !ok {
		return tenant.ErrTenantNotFound
	}
	if m.conflicts(t) {
		return ErrDuplicate
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = m.now()

	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

// Delete removes the tenant. Tenants aliasing it keep a dangling BaseID,
// which resolves to ErrTenantNotFound.
func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[id]; !ok {
		return tenant.ErrTenantNotFound
	}
	delete(m.tenants, id)
	return nil
}

// conflicts reports whether another tenant holds t's slug or domain.
func (m *Memory) conflicts(t *tenant.Tenant) bool {
	for id, other := range m.tenants {
		if id == t.ID {
			continue
		}
		if other.Slug == t.Slug {
			return true
		}
		if t.Domain != "" && strings.EqualFold(other.Domain, t.Domain) {
			return true
		}
	}
	return false
}
