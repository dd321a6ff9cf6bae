package activity

import (
	"context"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
)

// RecentLimit is the size of the activity feed.
const RecentLimit = 50

type UseCase struct {
	entries repository.ActivityRepository
}

func New(entries repository.ActivityRepository) *UseCase {
	return &UseCase{entries: entries}
}

// Recent returns the newest entries across letters and assets.
func (uc *UseCase) Recent(ctx context.Context) ([]domain.ActivityEntry, error) {
	entries, err := uc.entries.ListRecent(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	return entries, nil
}
