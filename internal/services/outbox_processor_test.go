package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/internal/infrastructure/outbox"
	repomocks "github.com/fastygo/sijagad/repository/mocks"
)

type sentMessage struct{ chatID, text string }

type messengerStub struct {
	sent []sentMessage
	err  error
}

func (m *messengerStub) SendMessage(ctx context.Context, chatID, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{chatID, text})
	return nil
}

type mailerStub struct{ subjects []string }

func (m *mailerStub) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func openStore(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOutboxProcessor_DrainExecutesEveryKind(t *testing.T) {
	store := openStore(t)
	activity := &repomocks.Activity{}
	messenger := &messengerStub{}
	mailer := &mailerStub{}
	op := NewOutboxProcessor(store, activity, messenger, mailer, nil, ProcessorConfig{DefaultChatID: "-100"})
	bridge := NewOutboxBridge(op)
	ctx := context.Background()

	require.NoError(t, bridge.SendTelegram(ctx, "", "broadcast"))
	require.NoError(t, bridge.SendTelegram(ctx, "42", "reply"))
	require.NoError(t, bridge.SendEmail(ctx, "admin@example.com", "digest", "<p>x</p>"))
	require.NoError(t, bridge.LogActivity(ctx, domain.ActivityEntry{Action: domain.ActionCreate, Target: "Tambah: PT A"}))
	assert.Equal(t, 4, op.Size())

	require.NoError(t, op.Drain(ctx))
	assert.Equal(t, 0, op.Size())

	require.Len(t, activity.Entries, 1)
	assert.Equal(t, domain.SystemActor, activity.Entries[0].Actor)
	assert.ElementsMatch(t, []sentMessage{{"-100", "broadcast"}, {"42", "reply"}}, messenger.sent)
	assert.Equal(t, []string{"digest"}, mailer.subjects)
}

func TestOutboxProcessor_FailedJobIsDroppedAfterOneAttempt(t *testing.T) {
	store := openStore(t)
	messenger := &messengerStub{err: errors.New("telegram down")}
	op := NewOutboxProcessor(store, nil, messenger, nil, nil, ProcessorConfig{DefaultChatID: "-100"})

	require.NoError(t, NewOutboxBridge(op).SendTelegram(context.Background(), "", "hello"))
	require.NoError(t, op.Drain(context.Background()))
	assert.Equal(t, 0, op.Size())
}

func TestOutboxProcessor_RetriesWhenConfigured(t *testing.T) {
	store := openStore(t)
	messenger := &messengerStub{err: errors.New("telegram down")}
	op := NewOutboxProcessor(store, nil, messenger, nil, nil, ProcessorConfig{DefaultChatID: "-100", MaxAttempts: 2})
	ctx := context.Background()

	require.NoError(t, NewOutboxBridge(op).SendTelegram(ctx, "", "hello"))
	require.NoError(t, op.Drain(ctx))
	assert.Equal(t, 1, op.Size())

	messenger.err = nil
	require.NoError(t, op.Drain(ctx))
	assert.Equal(t, 0, op.Size())
	assert.Len(t, messenger.sent, 1)
}

func TestOutboxProcessor_UnconfiguredChannelsSkip(t *testing.T) {
	store := openStore(t)
	op := NewOutboxProcessor(store, nil, nil, nil, nil, ProcessorConfig{})
	bridge := NewOutboxBridge(op)
	ctx := context.Background()

	require.NoError(t, bridge.SendTelegram(ctx, "", "hello"))
	require.NoError(t, bridge.SendEmail(ctx, "a@b.c", "s", "h"))
	require.NoError(t, op.Drain(ctx))
	assert.Equal(t, 0, op.Size())
}

func TestOutboxBridge_WithoutProcessor(t *testing.T) {
	var bridge *OutboxBridge
	assert.Error(t, bridge.SendTelegram(context.Background(), "", "x"))
}

type slowMessenger struct {
	delay time.Duration
	sent  atomic.Int32
}

func (m *slowMessenger) SendMessage(ctx context.Context, chatID, text string) error {
	time.Sleep(m.delay)
	m.sent.Add(1)
	return nil
}

func TestOutboxProcessor_OverlappingDrainsDeliverOnce(t *testing.T) {
	store := openStore(t)
	messenger := &slowMessenger{delay: 200 * time.Millisecond}
	op := NewOutboxProcessor(store, nil, messenger, nil, nil, ProcessorConfig{DefaultChatID: "-100"})
	require.NoError(t, NewOutboxBridge(op).SendTelegram(context.Background(), "", "daily report"))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, op.Drain(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), messenger.sent.Load())
	assert.Equal(t, 0, op.Size())
}

func TestOutboxProcessor_SlowDeliveryOnScheduleIsNotRepeated(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the drain schedule")
	}
	store := openStore(t)
	messenger := &slowMessenger{delay: 2500 * time.Millisecond}
	op := NewOutboxProcessor(store, nil, messenger, nil, nil, ProcessorConfig{
		Interval:      time.Second,
		DefaultChatID: "-100",
	})
	require.NoError(t, NewOutboxBridge(op).SendTelegram(context.Background(), "", "daily report"))

	op.Start()
	time.Sleep(4 * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	op.Stop(ctx)

	assert.Equal(t, int32(1), messenger.sent.Load())
}

func TestOutboxProcessor_CancelledDrainRestoresUnexecutedJobs(t *testing.T) {
	store := openStore(t)
	messenger := &messengerStub{}
	op := NewOutboxProcessor(store, nil, messenger, nil, nil, ProcessorConfig{DefaultChatID: "-100"})
	bridge := NewOutboxBridge(op)
	require.NoError(t, bridge.SendTelegram(context.Background(), "", "a"))
	require.NoError(t, bridge.SendTelegram(context.Background(), "", "b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, op.Drain(ctx), context.Canceled)
	assert.Equal(t, 2, op.Size())
	assert.Empty(t, messenger.sent)

	require.NoError(t, op.Drain(context.Background()))
	assert.Len(t, messenger.sent, 2)
}
