package services

import (
	"context"
	"fmt"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/internal/infrastructure/outbox"
	"github.com/fastygo/sijagad/usecase"
)

// Priorities keep audit entries ahead of slower network deliveries.
const (
	priorityActivity = 1
	priorityTelegram = 3
	priorityEmail    = 4
)

// OutboxBridge adapts the processor to the usecase.Outbox port.
type OutboxBridge struct {
	processor *OutboxProcessor
}

func NewOutboxBridge(processor *OutboxProcessor) *OutboxBridge {
	return &OutboxBridge{processor: processor}
}

func (b *OutboxBridge) LogActivity(ctx context.Context, entry domain.ActivityEntry) error {
	entry.Actor = domain.ActorOrDefault(entry.Actor)
	return b.enqueue(outbox.KindActivityLog, priorityActivity, entry)
}

func (b *OutboxBridge) SendTelegram(ctx context.Context, chatID, text string) error {
	return b.enqueue(outbox.KindTelegramMessage, priorityTelegram, outbox.TelegramPayload{ChatID: chatID, Text: text})
}

func (b *OutboxBridge) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	return b.enqueue(outbox.KindEmail, priorityEmail, outbox.EmailPayload{To: to, Subject: subject, HTML: htmlBody})
}

func (b *OutboxBridge) enqueue(kind string, priority int, payload interface{}) error {
	if b == nil || b.processor == nil {
		return fmt.Errorf("outbox not configured")
	}
	job, err := outbox.NewJob(kind, payload)
	if err != nil {
		return err
	}
	job.Priority = priority
	return b.processor.Enqueue(job)
}

var _ usecase.Outbox = (*OutboxBridge)(nil)
