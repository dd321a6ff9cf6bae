package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/sijagad/repository"
)

// Ledger is an in-memory DispatchLedger that ignores TTLs.
type Ledger struct {
	mu     sync.Mutex
	claims map[string]bool
	Err    error
}

func (l *Ledger) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.Err != nil {
		return false, l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claims == nil {
		l.claims = make(map[string]bool)
	}
	if l.claims[key] {
		return false, nil
	}
	l.claims[key] = true
	return true, nil
}

var _ repository.DispatchLedger = (*Ledger)(nil)
