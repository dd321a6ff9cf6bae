package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/domain"
	repomocks "github.com/fastygo/sijagad/repository/mocks"
	"github.com/fastygo/sijagad/usecase/mocks"
	"github.com/fastygo/sijagad/usecase/report"
)

// 2025-03-01 10:00 in Makassar.
var now = time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)

type chatRecorder struct {
	actions []string
	err     error
}

func (c *chatRecorder) SendChatAction(ctx context.Context, chatID, action string) error {
	c.actions = append(c.actions, chatID+":"+action)
	return c.err
}

type fixture struct {
	uc      *UseCase
	letters *repomocks.Letters
	outbox  *mocks.Outbox
	ledger  *repomocks.Ledger
	chat    *chatRecorder
}

func newFixture(t *testing.T, letters ...domain.Letter) fixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Makassar")
	require.NoError(t, err)

	f := fixture{
		letters: repomocks.NewLetters(letters...),
		outbox:  &mocks.Outbox{},
		ledger:  &repomocks.Ledger{},
		chat:    &chatRecorder{},
	}
	reports := report.New(f.letters, repomocks.NewAssets(), nil, report.Config{Location: loc, WindowDays: 90}, nil)
	f.uc = New(reports, f.letters, f.outbox, f.ledger, f.chat, Config{Location: loc, DigestRecipient: "admin.pln@gmail.com"}, nil)
	return f
}

func TestDispatchKey(t *testing.T) {
	assert.Equal(t, "dispatch:telegram:report:2025-03-01", DispatchKey(ChannelTelegram, KindReport, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBroadcastReport_OncePerDay(t *testing.T) {
	f := newFixture(t, domain.Letter{Vendor: "PT A", GuaranteeEnd: "2025-03-10", Status: domain.StatusActive})
	ctx := context.Background()

	text, sent, err := f.uc.BroadcastReport(ctx, now)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Contains(t, text, "*PT A*")

	_, sent, err = f.uc.BroadcastReport(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, sent)

	require.Len(t, f.outbox.Telegrams, 1)
	assert.Empty(t, f.outbox.Telegrams[0].ChatID)

	_, sent, err = f.uc.BroadcastReport(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestBroadcastReport_SkipsAllClear(t *testing.T) {
	f := newFixture(t)

	text, sent, err := f.uc.BroadcastReport(context.Background(), now)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, report.AllClear(90), text)
	assert.Empty(t, f.outbox.Telegrams)
}

func TestBroadcastReport_LedgerFailureStillSends(t *testing.T) {
	f := newFixture(t, domain.Letter{Vendor: "PT A", GuaranteeEnd: "2025-03-10", Status: domain.StatusActive})
	f.ledger.Err = errors.New("redis down")

	_, sent, err := f.uc.BroadcastReport(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestCheckUpcoming_AlwaysQueues(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		text, err := f.uc.CheckUpcoming(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, report.AllClear(90), text)
	}
	assert.Len(t, f.outbox.Telegrams, 2)
}

func TestDigest_SelectsThirtyDayWindowOncePerDay(t *testing.T) {
	f := newFixture(t,
		domain.Letter{ID: 1, Vendor: "PT <Dekat>", Amount: 5000000, GuaranteeEnd: "2025-03-31", Status: domain.StatusActive},
		domain.Letter{ID: 2, Vendor: "PT Jauh", GuaranteeEnd: "2025-04-01", Status: domain.StatusActive},
		domain.Letter{ID: 3, Vendor: "PT Lewat", GuaranteeEnd: "2025-02-28", Status: domain.StatusActive},
		domain.Letter{ID: 4, Vendor: "PT Hari Ini", GuaranteeEnd: "2025-03-01", Status: domain.StatusNew},
	)
	ctx := context.Background()

	result, err := f.uc.Digest(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, DigestResult{Count: 2, Sent: true}, result)

	require.Len(t, f.outbox.Emails, 1)
	mail := f.outbox.Emails[0]
	assert.Equal(t, "admin.pln@gmail.com", mail.To)
	assert.Equal(t, "⚠️ Peringatan: 2 Jaminan Akan Expire!", mail.Subject)
	assert.Contains(t, mail.HTML, "<li><b>PT &lt;Dekat&gt;</b> - 5000000 (Exp: 2025-03-31)</li>")
	assert.Contains(t, mail.HTML, "PT Hari Ini")
	assert.NotContains(t, mail.HTML, "PT Jauh")

	again, err := f.uc.Digest(ctx, now)
	require.NoError(t, err)
	assert.False(t, again.Sent)
	assert.Len(t, f.outbox.Emails, 1)
}

func TestDigest_NothingDue(t *testing.T) {
	f := newFixture(t)
	result, err := f.uc.Digest(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, DigestResult{}, result)
	assert.Empty(t, f.outbox.Emails)
}

func TestHandleCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, text := range []string{"/info", " /start "} {
		handled, err := f.uc.HandleCommand(ctx, Command{ChatID: "77", Text: text, At: now})
		require.NoError(t, err)
		assert.True(t, handled, text)
	}

	handled, err := f.uc.HandleCommand(ctx, Command{ChatID: "77", Text: "hello"})
	require.NoError(t, err)
	assert.False(t, handled)

	assert.Equal(t, []string{"77:typing", "77:typing"}, f.chat.actions)
	require.Len(t, f.outbox.Telegrams, 2)
	assert.Equal(t, "77", f.outbox.Telegrams[1].ChatID)
}

func TestHandleCommand_ChatActionFailureIgnored(t *testing.T) {
	f := newFixture(t)
	f.chat.err = fmt.Errorf("blocked")

	handled, err := f.uc.HandleCommand(context.Background(), Command{ChatID: "1", Text: "/info", At: now})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, f.outbox.Telegrams, 1)
}
