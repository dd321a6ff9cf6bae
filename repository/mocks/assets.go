package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
)

// Assets is an in-memory AssetRepository.
type Assets struct {
	mu      sync.Mutex
	rows    map[string]domain.Asset
	Offline bool
}

func NewAssets(seed ...domain.Asset) *Assets {
	m := &Assets{rows: make(map[string]domain.Asset)}
	base := time.Now().Add(-time.Hour)
	for i, a := range seed {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = base.Add(time.Duration(i) * time.Second)
		}
		m.rows[a.ID] = a
	}
	return m
}

// Get returns a stored row including soft-deleted ones.
func (m *Assets) Get(id string) (domain.Asset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	return a, ok
}

func (m *Assets) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.IsDeleted {
		return nil, domain.ErrAssetNotFound
	}
	return &a, nil
}

func (m *Assets) List(ctx context.Context) ([]domain.Asset, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Asset, 0, len(m.rows))
	for _, a := range m.rows {
		if !a.IsDeleted {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Assets) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	asset.CreatedAt = time.Now()
	m.rows[asset.ID] = *asset
	return asset, nil
}

func (m *Assets) UpdateStatus(ctx context.Context, id string, step int, status string) (*domain.Asset, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.IsDeleted {
		return nil, domain.ErrAssetNotFound
	}
	a.CurrentStep = step
	a.Status = status
	m.rows[id] = a
	return &a, nil
}

func (m *Assets) UpdateDetails(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.IsDeleted {
		return nil, domain.ErrAssetNotFound
	}
	if patch.AssetType != nil {
		a.AssetType = *patch.AssetType
	}
	if patch.Brand != nil {
		a.Brand = patch.Brand
	}
	if patch.Specification != nil {
		a.Specification = patch.Specification
	}
	if patch.Location != nil {
		a.Location = *patch.Location
	}
	if patch.Notes != nil {
		a.Notes = patch.Notes
	}
	if patch.Quantity != nil {
		a.Quantity = *patch.Quantity
	}
	if patch.Unit != nil {
		a.Unit = *patch.Unit
	}
	if patch.BookValue != nil {
		a.BookValue = *patch.BookValue
	}
	m.rows[id] = a
	return &a, nil
}

func (m *Assets) SoftDelete(ctx context.Context, id string) error {
	if m.Offline {
		return domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.rows[id]; ok {
		a.IsDeleted = true
		m.rows[id] = a
	}
	return nil
}

var _ repository.AssetRepository = (*Assets)(nil)
