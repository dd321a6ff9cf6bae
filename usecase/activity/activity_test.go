package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository/mocks"
)

func TestRecent_CapsFeed(t *testing.T) {
	repo := &mocks.Activity{}
	for i := 0; i < RecentLimit+5; i++ {
		require.NoError(t, repo.Append(context.Background(), &domain.ActivityEntry{Action: domain.ActionCreate}))
	}

	entries, err := New(repo).Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, RecentLimit)
}

func TestRecent_EmptyIsNotNil(t *testing.T) {
	entries, err := New(&mocks.Activity{}).Recent(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRecent_StoreUnavailable(t *testing.T) {
	_, err := New(&mocks.Activity{Offline: true}).Recent(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
