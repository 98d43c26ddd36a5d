package tenant_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// sliceStore is a minimal Store over a fixed set of tenants.
type sliceStore struct {
	mu      sync.RWMutex
	tenants []*tenant.Tenant
}

func newSliceStore(tenants ...*tenant.Tenant) *sliceStore {
	return &sliceStore{tenants: tenants}
}

func (s *sliceStore) Lookup(_ context.Context, q tenant.Lookup) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*tenant.Tenant
	for _, t := range s.tenants {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *sliceStore) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *sliceStore) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Lookup(ctx context.Context, q tenant.Lookup) ([]*tenant.Tenant, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]*tenant.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	args := m.Called(ctx, slug)
	if v := args.Get(0); v != nil {
		return v.(*tenant.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*tenant.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTenant(slug, domain string, age time.Duration) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Slug:      slug,
		Domain:    domain,
		IsActive:  true,
		CreatedAt: baseTime.Add(-age),
		UpdatedAt: baseTime.Add(-age),
	}
}

func exampleConfig() tenant.Config {
	return tenant.Config{
		AllowedHosts:  []string{"example.com"},
		DefaultSlug:   "default",
		RequireActive: true,
	}
}
