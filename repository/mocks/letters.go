// Package mocks provides in-memory repository implementations for tests.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
)

// Letters is an in-memory LetterRepository. Set Offline to simulate a missing store.
type Letters struct {
	mu      sync.Mutex
	rows    map[int64]domain.Letter
	nextID  int64
	Offline bool
	// FailMarkExpired makes MarkExpired fail for the listed ids.
	FailMarkExpired map[int64]error
	// Writes counts successful MarkExpired updates.
	Writes int
}

func NewLetters(seed ...domain.Letter) *Letters {
	m := &Letters{rows: make(map[int64]domain.Letter)}
	for _, l := range seed {
		if l.ID == 0 {
			m.nextID++
			l.ID = m.nextID
		} else if l.ID > m.nextID {
			m.nextID = l.ID
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = time.Now()
		}
		m.rows[l.ID] = l
	}
	return m
}

// Get returns a stored row without the repository filters.
func (m *Letters) Get(id int64) (domain.Letter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rows[id]
	return l, ok
}

func (m *Letters) GetByID(ctx context.Context, id int64) (*domain.Letter, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrLetterNotFound
	}
	return &l, nil
}

func (m *Letters) List(ctx context.Context, filter repository.LetterFilter) ([]domain.Letter, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	return m.filter(func(l domain.Letter) bool {
		switch filter.Scope {
		case repository.ScopeActive:
			return !l.IsTerminal()
		case repository.ScopeArchive:
			return l.IsTerminal()
		}
		return true
	}, true), nil
}

func (m *Letters) ListOpen(ctx context.Context) ([]domain.Letter, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	return m.filter(func(l domain.Letter) bool { return !l.IsTerminal() }, false), nil
}

func (m *Letters) Create(ctx context.Context, letter *domain.Letter) (*domain.Letter, error) {
	if m.Offline {
		return nil, domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	letter.ID = m.nextID
	letter.IsDeleted = false
	letter.CreatedAt = time.Now()
	m.rows[letter.ID] = *letter
	return letter, nil
}

func (m *Letters) Update(ctx context.Context, letter *domain.Letter) error {
	if m.Offline {
		return domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[letter.ID]
	if !ok {
		return domain.ErrLetterNotFound
	}
	letter.CreatedAt = existing.CreatedAt
	letter.IsDeleted = existing.IsDeleted
	m.rows[letter.ID] = *letter
	return nil
}

func (m *Letters) SoftDelete(ctx context.Context, id int64) (string, error) {
	if m.Offline {
		return "", domain.ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rows[id]
	if !ok {
		return "", nil
	}
	l.IsDeleted = true
	m.rows[id] = l
	return l.Vendor, nil
}

func (m *Letters) MarkExpired(ctx context.Context, id int64) (bool, error) {
	if m.Offline {
		return false, domain.ErrStoreUnavailable
	}
	if err := m.FailMarkExpired[id]; err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rows[id]
	if !ok || l.IsDeleted || l.IsTerminal() {
		return false, nil
	}
	l.Status = domain.StatusExpired
	m.rows[id] = l
	m.Writes++
	return true, nil
}

func (m *Letters) filter(keep func(domain.Letter) bool, desc bool) []domain.Letter {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Letter, 0, len(m.rows))
	for _, l := range m.rows {
		if l.IsDeleted || !keep(l) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

var _ repository.LetterRepository = (*Letters)(nil)
