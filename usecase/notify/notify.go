package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/pkg/logger"
	"github.com/fastygo/sijagad/repository"
	"github.com/fastygo/sijagad/usecase"
	"github.com/fastygo/sijagad/usecase/report"
)

// Dispatch channels and kinds used to build ledger keys.
const (
	ChannelTelegram = "telegram"
	ChannelEmail    = "email"
	KindReport      = "report"
	KindDigest      = "digest"
)

// ChatActor shows transient chat state while a reply is prepared.
type ChatActor interface {
	SendChatAction(ctx context.Context, chatID, action string) error
}

type Config struct {
	Location         *time.Location
	DigestRecipient  string
	DigestWindowDays int
	// ClaimTTL bounds how long a dispatch key blocks a repeat send.
	ClaimTTL time.Duration
}

type UseCase struct {
	reports  *report.UseCase
	letters  repository.LetterRepository
	outbox   usecase.Outbox
	ledger   repository.DispatchLedger
	chat     ChatActor
	commands *usecase.Dispatcher
	cfg      Config
	logger   *zap.Logger
}

func New(
	reports *report.UseCase,
	letters repository.LetterRepository,
	outbox usecase.Outbox,
	ledger repository.DispatchLedger,
	chat ChatActor,
	cfg Config,
	log *zap.Logger,
) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DigestWindowDays <= 0 {
		cfg.DigestWindowDays = 30
	}
	if cfg.DigestRecipient == "" {
		cfg.DigestRecipient = "admin.pln@gmail.com"
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 36 * time.Hour
	}
	uc := &UseCase{
		reports:  reports,
		letters:  letters,
		outbox:   outbox,
		ledger:   ledger,
		chat:     chat,
		commands: usecase.NewDispatcher(),
		cfg:      cfg,
		logger:   log,
	}
	uc.registerCommands()
	return uc
}

// DispatchKey identifies one scheduled broadcast per channel, kind and civil day.
func DispatchKey(channel, kind string, day time.Time) string {
	return fmt.Sprintf("dispatch:%s:%s:%s", channel, kind, day.Format(domain.DateLayout))
}

// BroadcastReport sends the upcoming report to the default chat at most once
// per day, and only when it lists at least one letter.
func (uc *UseCase) BroadcastReport(ctx context.Context, now time.Time) (string, bool, error) {
	text, items, err := uc.reports.Upcoming(ctx, now)
	if err != nil {
		return "", false, err
	}
	if len(items) == 0 {
		return text, false, nil
	}

	today := domain.CivilDate(now, uc.cfg.Location)
	if !uc.claim(ctx, DispatchKey(ChannelTelegram, KindReport, today)) {
		return text, false, nil
	}
	if err := uc.outbox.SendTelegram(ctx, "", text); err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to queue report broadcast", zap.Error(err))
		return text, false, nil
	}
	return text, true, nil
}

// CheckUpcoming previews the report and queues it for the default chat.
// Manual checks are never deduplicated.
func (uc *UseCase) CheckUpcoming(ctx context.Context, now time.Time) (string, error) {
	text, _, err := uc.reports.Upcoming(ctx, now)
	if err != nil {
		return "", err
	}
	if err := uc.outbox.SendTelegram(ctx, "", text); err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to queue report", zap.Error(err))
	}
	return text, nil
}

// DigestResult reports what the e-mail digest found.
type DigestResult struct {
	Count int  `json:"count"`
	Sent  bool `json:"sent"`
}

// Digest e-mails the letters expiring within the digest window, once per day.
func (uc *UseCase) Digest(ctx context.Context, now time.Time) (DigestResult, error) {
	letters, err := uc.letters.List(ctx, repository.LetterFilter{Scope: repository.ScopeAll})
	if err != nil {
		return DigestResult{}, err
	}

	due := uc.expiringWithin(ctx, letters, now, uc.cfg.DigestWindowDays)
	result := DigestResult{Count: len(due)}
	if len(due) == 0 {
		return result, nil
	}

	today := domain.CivilDate(now, uc.cfg.Location)
	if !uc.claim(ctx, DispatchKey(ChannelEmail, KindDigest, today)) {
		return result, nil
	}

	subject := fmt.Sprintf("⚠️ Peringatan: %d Jaminan Akan Expire!", len(due))
	if err := uc.outbox.SendEmail(ctx, uc.cfg.DigestRecipient, subject, DigestHTML(due, uc.cfg.DigestWindowDays)); err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to queue digest", zap.Error(err))
		return result, nil
	}
	result.Sent = true
	return result, nil
}

// DigestHTML renders the digest body.
func DigestHTML(letters []domain.Letter, windowDays int) string {
	var rows strings.Builder
	for _, l := range letters {
		vendor := l.Vendor
		if vendor == "" {
			vendor = "Unknown"
		}
		end := l.GuaranteeEnd
		if end == "" {
			end = "-"
		}
		fmt.Fprintf(&rows, "<li><b>%s</b> - %d (Exp: %s)</li>", html.EscapeString(vendor), l.Amount, html.EscapeString(end))
	}
	return fmt.Sprintf(`<h3>Laporan Harian SiJAGAD</h3>
<p>Halo Admin, berikut adalah daftar jaminan yang akan berakhir dalam %d hari ke depan:</p>
<ul>%s</ul>
<p>Mohon segera tindak lanjuti.</p>`, windowDays, rows.String())
}

func (uc *UseCase) expiringWithin(ctx context.Context, letters []domain.Letter, now time.Time, window int) []domain.Letter {
	out := make([]domain.Letter, 0)
	for _, l := range letters {
		expiry, err := l.ExpiryDate()
		if err != nil {
			logger.WithRequestID(ctx, uc.logger).Debug("digest skipped letter without expiry date", zap.Int64("letter_id", l.ID))
			continue
		}
		days := domain.DaysRemaining(expiry, now, uc.cfg.Location)
		if days >= 0 && days <= window {
			out = append(out, l)
		}
	}
	return out
}

// claim reserves a dispatch key. Without a ledger, or when the ledger fails,
// the send goes ahead.
func (uc *UseCase) claim(ctx context.Context, key string) bool {
	if uc.ledger == nil {
		return true
	}
	ok, err := uc.ledger.Claim(ctx, key, uc.cfg.ClaimTTL)
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("dispatch ledger unavailable, sending without dedup",
			zap.String("key", key), zap.Error(err))
		return true
	}
	if !ok {
		logger.WithRequestID(ctx, uc.logger).Info("dispatch already claimed today", zap.String("key", key))
	}
	return ok
}
