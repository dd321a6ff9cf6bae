package usecase

import (
	"context"

	"github.com/fastygo/sijagad/domain"
)

// Outbox records side effects that must run after the response has been sent.
// Implementations only enqueue; failures of the job itself never reach the caller.
type Outbox interface {
	LogActivity(ctx context.Context, entry domain.ActivityEntry) error
	// SendTelegram targets the default chat when chatID is empty.
	SendTelegram(ctx context.Context, chatID, text string) error
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// ReportCache is invalidated by every write that can change the upcoming report.
type ReportCache interface {
	Invalidate()
}
