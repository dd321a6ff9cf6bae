package repository

import (
	"context"

	"github.com/fastygo/sijagad/domain"
)

type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
	ListByAsset(ctx context.Context, assetID string) ([]domain.ActivityEntry, error)
	DeleteByAsset(ctx context.Context, assetID string) error
}
