package repository

import (
	"context"

	"github.com/fastygo/sijagad/domain"
)

type AssetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context) ([]domain.Asset, error)
	Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)
	UpdateStatus(ctx context.Context, id string, step int, status string) (*domain.Asset, error)
	UpdateDetails(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error)
	// SoftDelete is idempotent; unknown ids are not an error.
	SoftDelete(ctx context.Context, id string) error
}
