// Package mocks provides recording fakes for usecase ports.
package mocks

import (
	"context"
	"sync"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/usecase"
)

type TelegramCall struct {
	ChatID string
	Text   string
}

type EmailCall struct {
	To      string
	Subject string
	HTML    string
}

// Outbox records every enqueued job.
type Outbox struct {
	mu         sync.Mutex
	Activities []domain.ActivityEntry
	Telegrams  []TelegramCall
	Emails     []EmailCall
	Err        error
}

func (o *Outbox) LogActivity(ctx context.Context, entry domain.ActivityEntry) error {
	if o.Err != nil {
		return o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	entry.Actor = domain.ActorOrDefault(entry.Actor)
	o.Activities = append(o.Activities, entry)
	return nil
}

func (o *Outbox) SendTelegram(ctx context.Context, chatID, text string) error {
	if o.Err != nil {
		return o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Telegrams = append(o.Telegrams, TelegramCall{ChatID: chatID, Text: text})
	return nil
}

func (o *Outbox) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if o.Err != nil {
		return o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Emails = append(o.Emails, EmailCall{To: to, Subject: subject, HTML: htmlBody})
	return nil
}

var _ usecase.Outbox = (*Outbox)(nil)

// Cache counts invalidations.
type Cache struct {
	Invalidations int
}

func (c *Cache) Invalidate() { c.Invalidations++ }

var _ usecase.ReportCache = (*Cache)(nil)
