package asset

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/pkg/logger"
	"github.com/fastygo/sijagad/repository"
	"github.com/fastygo/sijagad/usecase"
)

// NothingChanged is returned by UpdateDetails for an empty patch.
const NothingChanged = "Tidak ada data yang berubah"

type UseCase struct {
	assets   repository.AssetRepository
	activity repository.ActivityRepository
	outbox   usecase.Outbox
	logger   *zap.Logger
}

func New(assets repository.AssetRepository, activity repository.ActivityRepository, outbox usecase.Outbox, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		assets:   assets,
		activity: activity,
		outbox:   outbox,
		logger:   log,
	}
}

// Create fills defaults, recomputes the estimate and stores the asset.
func (uc *UseCase) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	if asset == nil {
		return nil, domain.ErrInvalidPayload
	}
	applyDefaults(asset)
	asset.RecomputeEstimate()

	created, err := uc.assets.Create(ctx, asset)
	if err != nil {
		return nil, err
	}

	uc.logActivity(ctx, created.ID, created.InputBy, domain.ActionCreate, "Input aset baru: "+created.AssetNumber)
	return created, nil
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Asset, error) {
	return uc.assets.List(ctx)
}

// UpdateStatus moves the asset to another workflow step.
func (uc *UseCase) UpdateStatus(ctx context.Context, id string, step int, statusText, actor string) (*domain.Asset, error) {
	id = strings.TrimSpace(id)
	updated, err := uc.assets.UpdateStatus(ctx, id, step, statusText)
	if err != nil {
		return nil, err
	}
	uc.logActivity(ctx, id, actor, domain.ActionUpdateStatus, "Status -> "+statusText)
	return updated, nil
}

// UpdateDetails applies only the supplied fields. The bool result is false
// when the patch was empty and nothing was written.
func (uc *UseCase) UpdateDetails(ctx context.Context, id string, patch domain.AssetPatch, actor string) (*domain.Asset, bool, error) {
	if patch.IsEmpty() {
		return nil, false, nil
	}
	id = strings.TrimSpace(id)
	updated, err := uc.assets.UpdateDetails(ctx, id, patch)
	if err != nil {
		return nil, false, err
	}
	uc.logActivity(ctx, id, actor, domain.ActionUpdateDetails, "Edit data teknis aset")
	return updated, true, nil
}

// Delete soft-deletes the asset and purges its history. Purge failures are
// logged and ignored; unknown ids succeed. The deletion itself is recorded
// in the global feed, unbound from the purged asset.
func (uc *UseCase) Delete(ctx context.Context, id, actor string) error {
	id = strings.TrimSpace(id)
	if err := uc.assets.SoftDelete(ctx, id); err != nil {
		return err
	}
	if uc.activity != nil {
		if err := uc.activity.DeleteByAsset(ctx, id); err != nil {
			logger.WithRequestID(ctx, uc.logger).Warn("failed to purge asset activity",
				zap.String("asset_id", id), zap.Error(err))
		}
	}
	if uc.outbox != nil {
		entry := domain.ActivityEntry{
			Actor:  domain.ActorOrDefault(actor),
			Action: domain.ActionSoftDelete,
			Target: "Hapus aset: " + id,
		}
		if err := uc.outbox.LogActivity(ctx, entry); err != nil {
			logger.WithRequestID(ctx, uc.logger).Error("failed to queue activity entry", zap.Error(err))
		}
	}
	return nil
}

// Logs returns the asset history, newest first. Read failures yield an empty list.
func (uc *UseCase) Logs(ctx context.Context, id string) []domain.ActivityEntry {
	entries, err := uc.activity.ListByAsset(ctx, strings.TrimSpace(id))
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("failed to read asset activity",
			zap.String("asset_id", id), zap.Error(err))
		return []domain.ActivityEntry{}
	}
	return entries
}

func (uc *UseCase) logActivity(ctx context.Context, assetID, actor, action, target string) {
	if uc.outbox == nil {
		return
	}
	entry := domain.ActivityEntry{
		Actor:   domain.ActorOrDefault(actor),
		Action:  action,
		Target:  target,
		AssetID: &assetID,
	}
	if err := uc.outbox.LogActivity(ctx, entry); err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to queue activity entry",
			zap.String("action", action), zap.Error(err))
	}
}

func applyDefaults(a *domain.Asset) {
	if a.Quantity <= 0 {
		a.Quantity = 1
	}
	if a.Unit == "" {
		a.Unit = domain.DefaultUnit
	}
	if a.RatePerKg == 0 {
		a.RatePerKg = domain.DefaultRatePerKg
	}
	if a.Status == "" {
		a.Status = domain.StatusDraft
	}
	if a.CurrentStep < domain.FirstStep || a.CurrentStep > domain.LastStep {
		a.CurrentStep = domain.FirstStep
	}
	if a.InputBy == "" {
		a.InputBy = domain.DefaultInputBy
	}
	a.IsDeleted = false
}
