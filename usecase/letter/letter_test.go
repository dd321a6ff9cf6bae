package letter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
	repomocks "github.com/fastygo/sijagad/repository/mocks"
	"github.com/fastygo/sijagad/usecase/mocks"
)

type fixture struct {
	uc     *UseCase
	repo   *repomocks.Letters
	outbox *mocks.Outbox
	cache  *mocks.Cache
}

func newFixture(seed ...domain.Letter) fixture {
	f := fixture{
		repo:   repomocks.NewLetters(seed...),
		outbox: &mocks.Outbox{},
		cache:  &mocks.Cache{},
	}
	f.uc = New(f.repo, f.outbox, f.cache, nil)
	return f
}

func TestCreate_SanitizesDefaultsAndQueuesSideEffects(t *testing.T) {
	f := newFixture()

	created, err := f.uc.Create(context.Background(), &domain.Letter{
		Vendor:         "<b>PT Maju</b>",
		Work:           "Pekerjaan <i>gardu</i>",
		ContractNumber: "K-001",
	}, "ops@pln.co.id")
	require.NoError(t, err)

	assert.Equal(t, "PT Maju", created.Vendor)
	assert.Equal(t, "Pekerjaan gardu", created.Work)
	assert.Equal(t, domain.StatusActive, created.Status)
	assert.False(t, created.IsDeleted)
	assert.NotZero(t, created.ID)

	require.Len(t, f.outbox.Activities, 1)
	assert.Equal(t, domain.ActivityEntry{Actor: "ops@pln.co.id", Action: domain.ActionCreate, Target: "Tambah: PT Maju"}, f.outbox.Activities[0])
	require.Len(t, f.outbox.Telegrams, 1)
	assert.Equal(t, "🆕 *DATA BARU*\n🏢 PT Maju\n📄 `K-001`", f.outbox.Telegrams[0].Text)
	assert.Empty(t, f.outbox.Telegrams[0].ChatID)
	assert.Equal(t, 1, f.cache.Invalidations)
}

func TestCreate_OutboxFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.outbox.Err = assert.AnError

	_, err := f.uc.Create(context.Background(), &domain.Letter{Vendor: "PT A"}, "")
	assert.NoError(t, err)
}

func TestUpdate_FullReplacement(t *testing.T) {
	f := newFixture(domain.Letter{ID: 3, Vendor: "Old", Status: domain.StatusNew, Work: "x"})

	updated, err := f.uc.Update(context.Background(), 3, &domain.Letter{Vendor: "New", Status: domain.StatusDone}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.ID)

	stored, _ := f.repo.Get(3)
	assert.Equal(t, "New", stored.Vendor)
	assert.Equal(t, "", stored.Work)
	assert.Equal(t, domain.StatusDone, stored.Status)

	require.Len(t, f.outbox.Activities, 1)
	assert.Equal(t, "System", f.outbox.Activities[0].Actor)
	assert.Equal(t, "Edit: New", f.outbox.Activities[0].Target)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Update(context.Background(), 99, &domain.Letter{Vendor: "X"}, "")
	assert.ErrorIs(t, err, domain.ErrLetterNotFound)
	assert.Empty(t, f.outbox.Activities)
}

func TestDelete_IsIdempotent(t *testing.T) {
	f := newFixture(domain.Letter{ID: 1, Vendor: "PT A", Status: domain.StatusActive})

	require.NoError(t, f.uc.Delete(context.Background(), 1, "admin"))
	require.NoError(t, f.uc.Delete(context.Background(), 1, "admin"))
	require.NoError(t, f.uc.Delete(context.Background(), 404, "admin"))

	list, err := f.uc.List(context.Background(), repository.ScopeAll)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.Len(t, f.outbox.Activities, 3)
	assert.Equal(t, "Hapus: PT A", f.outbox.Activities[0].Target)
	assert.Equal(t, "Hapus: Unknown", f.outbox.Activities[2].Target)
	assert.Equal(t, domain.ActionSoftDelete, f.outbox.Activities[2].Action)
}

func TestList_Scopes(t *testing.T) {
	f := newFixture(
		domain.Letter{ID: 1, Status: domain.StatusActive},
		domain.Letter{ID: 2, Status: domain.StatusExpired},
		domain.Letter{ID: 3, Status: domain.StatusDone},
		domain.Letter{ID: 4, Status: domain.StatusNew, IsDeleted: true},
	)
	ctx := context.Background()

	all, err := f.uc.List(ctx, repository.ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID)

	active, err := f.uc.List(ctx, repository.ScopeActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	archive, err := f.uc.List(ctx, repository.ScopeArchive)
	require.NoError(t, err)
	assert.Len(t, archive, 2)
}

func TestStoreUnavailablePropagates(t *testing.T) {
	f := newFixture()
	f.repo.Offline = true

	_, err := f.uc.Create(context.Background(), &domain.Letter{Vendor: "A"}, "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	assert.Error(t, f.uc.Delete(context.Background(), 1, ""))
}
