package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
)

// Activity is an in-memory ActivityRepository.
type Activity struct {
	mu        sync.Mutex
	Entries   []domain.ActivityEntry
	Offline   bool
	FailPurge bool
}

func (m *Activity) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	if m.Offline {
		return domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.Entries) + 1)
	entry.Actor = domain.ActorOrDefault(entry.Actor)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.Entries = append(m.Entries, *entry)
	return nil
}

func (m *Activity) ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ActivityEntry, 0, limit)
	for i := len(m.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Entries[i])
	}
	return out, nil
}

func (m *Activity) ListByAsset(ctx context.Context, assetID string) ([]domain.ActivityEntry, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ActivityEntry, 0)
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if e := m.Entries[i]; e.AssetID != nil && *e.AssetID == assetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Activity) DeleteByAsset(ctx context.Context, assetID string) error {
	if m.FailPurge {
		return errors.New("purge failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Entries[:0]
	for _, e := range m.Entries {
		if e.AssetID == nil || *e.AssetID != assetID {
			kept = append(kept, e)
		}
	}
	m.Entries = kept
	return nil
}

var _ repository.ActivityRepository = (*Activity)(nil)
