package report

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/pkg/logger"
	"github.com/fastygo/sijagad/repository"
)

// Config controls the upcoming report.
type Config struct {
	Location   *time.Location
	WindowDays int
}

type UseCase struct {
	letters repository.LetterRepository
	assets  repository.AssetRepository
	cache   *Cache
	cfg     Config
	logger  *zap.Logger
}

func New(letters repository.LetterRepository, assets repository.AssetRepository, cache *Cache, cfg Config, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	return &UseCase{
		letters: letters,
		assets:  assets,
		cache:   cache,
		cfg:     cfg,
		logger:  log,
	}
}

// Upcoming returns the rendered report of open letters expiring within the
// window, together with the items it lists.
func (uc *UseCase) Upcoming(ctx context.Context, now time.Time) (string, []Item, error) {
	today := domain.CivilDate(now, uc.cfg.Location)
	key := today.Format(domain.DateLayout)
	if cached, ok := uc.cache.get(key); ok {
		return cached.text, cached.items, nil
	}

	letters, err := uc.letters.ListOpen(ctx)
	if err != nil {
		return "", nil, err
	}

	items := uc.collect(ctx, letters, now)
	text := FormatUpcoming(items, today, uc.cfg.WindowDays)
	uc.cache.set(key, cachedReport{text: text, items: items})
	return text, items, nil
}

// collect classifies letters and keeps those with 0..window days left, soonest first.
func (uc *UseCase) collect(ctx context.Context, letters []domain.Letter, now time.Time) []Item {
	log := logger.WithRequestID(ctx, uc.logger)
	items := make([]Item, 0, len(letters))
	for _, l := range letters {
		expiry, err := l.ExpiryDate()
		if err != nil {
			log.Warn("skipping letter with unreadable expiry date",
				zap.Int64("letter_id", l.ID),
				zap.String("value", l.GuaranteeEnd),
				zap.Error(err))
			continue
		}
		c := domain.Classify(expiry, now, uc.cfg.Location, l.Status)
		if c.DaysRemaining < 0 || c.DaysRemaining > uc.cfg.WindowDays {
			continue
		}
		items = append(items, Item{
			ID:             l.ID,
			Vendor:         l.Vendor,
			ContractNumber: l.ContractNumber,
			Expiry:         expiry,
			DaysRemaining:  c.DaysRemaining,
			Tier:           c.Tier,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Expiry.Equal(items[j].Expiry) {
			return items[i].Expiry.Before(items[j].Expiry)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Summary aggregates every non-deleted letter.
func (uc *UseCase) Summary(ctx context.Context) (Summary, error) {
	letters, err := uc.letters.List(ctx, repository.LetterFilter{Scope: repository.ScopeAll})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(letters), nil
}

// AssetDashboard aggregates every non-deleted asset.
func (uc *UseCase) AssetDashboard(ctx context.Context) (AssetSummary, error) {
	assets, err := uc.assets.List(ctx)
	if err != nil {
		return AssetSummary{}, err
	}
	return AssetStats(assets), nil
}

// Invalidate drops cached reports.
func (uc *UseCase) Invalidate() {
	uc.cache.Invalidate()
}

// WindowDays is the configured look-ahead.
func (uc *UseCase) WindowDays() int {
	return uc.cfg.WindowDays
}
