package letter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/pkg/logger"
	"github.com/fastygo/sijagad/pkg/sanitize"
	"github.com/fastygo/sijagad/repository"
	"github.com/fastygo/sijagad/usecase"
)

type UseCase struct {
	letters repository.LetterRepository
	outbox  usecase.Outbox
	cache   usecase.ReportCache
	logger  *zap.Logger
}

func New(letters repository.LetterRepository, outbox usecase.Outbox, cache usecase.ReportCache, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		letters: letters,
		outbox:  outbox,
		cache:   cache,
		logger:  log,
	}
}

func (uc *UseCase) List(ctx context.Context, scope repository.LetterScope) ([]domain.Letter, error) {
	return uc.letters.List(ctx, repository.LetterFilter{Scope: scope})
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Letter, error) {
	return uc.letters.GetByID(ctx, id)
}

// Create stores a new letter, then queues the audit entry and the chat notice.
func (uc *UseCase) Create(ctx context.Context, letter *domain.Letter, actor string) (*domain.Letter, error) {
	if letter == nil {
		return nil, domain.ErrInvalidPayload
	}
	clean(letter)
	if letter.Status == "" {
		letter.Status = domain.StatusActive
	}
	letter.IsDeleted = false

	created, err := uc.letters.Create(ctx, letter)
	if err != nil {
		return nil, err
	}
	uc.invalidate()

	uc.logActivity(ctx, actor, domain.ActionCreate, "Tambah: "+created.Vendor)
	uc.notify(ctx, fmt.Sprintf("🆕 *DATA BARU*\n🏢 %s\n📄 `%s`", created.Vendor, created.ContractNumber))
	return created, nil
}

// Update replaces every editable field of an existing letter.
func (uc *UseCase) Update(ctx context.Context, id int64, letter *domain.Letter, actor string) (*domain.Letter, error) {
	if letter == nil {
		return nil, domain.ErrInvalidPayload
	}
	clean(letter)
	letter.ID = id
	if letter.Status == "" {
		letter.Status = domain.StatusActive
	}

	if err := uc.letters.Update(ctx, letter); err != nil {
		return nil, err
	}
	uc.invalidate()

	uc.logActivity(ctx, actor, domain.ActionUpdate, "Edit: "+letter.Vendor)
	return letter, nil
}

// Delete soft-deletes a letter. Unknown ids succeed so the call is idempotent.
func (uc *UseCase) Delete(ctx context.Context, id int64, actor string) error {
	vendor, err := uc.letters.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	uc.invalidate()

	if vendor == "" {
		vendor = "Unknown"
	}
	uc.logActivity(ctx, actor, domain.ActionSoftDelete, "Hapus: "+vendor)
	return nil
}

func (uc *UseCase) logActivity(ctx context.Context, actor, action, target string) {
	if uc.outbox == nil {
		return
	}
	entry := domain.ActivityEntry{Actor: domain.ActorOrDefault(actor), Action: action, Target: target}
	if err := uc.outbox.LogActivity(ctx, entry); err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to queue activity entry",
			zap.String("action", action), zap.Error(err))
	}
}

func (uc *UseCase) notify(ctx context.Context, text string) {
	if uc.outbox == nil {
		return
	}
	if err := uc.outbox.SendTelegram(ctx, "", text); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("failed to queue telegram notice", zap.Error(err))
	}
}

func (uc *UseCase) invalidate() {
	if uc.cache != nil {
		uc.cache.Invalidate()
	}
}

func clean(l *domain.Letter) {
	l.Vendor = sanitize.Text(l.Vendor)
	l.Work = sanitize.Text(l.Work)
}
