package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/internal/config"
	pgInfra "github.com/fastygo/sijagad/internal/infrastructure/postgres"
	"github.com/fastygo/sijagad/repository"
	"github.com/fastygo/sijagad/repository/postgres"
)

// setupTestDB starts a throwaway Postgres and applies the embedded migrations.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("integration test skipped: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		tcpostgres.WithDatabase("sijagad_test"),
		tcpostgres.WithUsername("sijagad"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := &config.Config{
		Database:   config.DatabaseConfig{URL: dsn},
		Migrations: config.MigrationsConfig{Enabled: true},
	}
	require.NoError(t, pgInfra.RunMigrations(cfg, nil))

	pool, err := pgInfra.NewPool(ctx, cfg.Database, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestLetterRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewLetterRepository(pool)
	ctx := context.Background()

	active, err := repo.Create(ctx, &domain.Letter{
		Vendor:       "PT Sinar",
		Amount:       15_000_000,
		GuaranteeEnd: "2024-06-10",
		Status:       domain.StatusActive,
		Category:     domain.CategoryExecution,
	})
	require.NoError(t, err)
	require.NotZero(t, active.ID)

	done, err := repo.Create(ctx, &domain.Letter{Vendor: "PT Lama", Status: domain.StatusDone})
	require.NoError(t, err)

	t.Run("scopes", func(t *testing.T) {
		open, err := repo.List(ctx, repository.LetterFilter{Scope: repository.ScopeActive})
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, int64(15_000_000), open[0].Amount)

		archive, err := repo.List(ctx, repository.LetterFilter{Scope: repository.ScopeArchive})
		require.NoError(t, err)
		require.Len(t, archive, 1)
		assert.Equal(t, done.ID, archive[0].ID)
	})

	t.Run("mark expired writes once", func(t *testing.T) {
		written, err := repo.MarkExpired(ctx, active.ID)
		require.NoError(t, err)
		assert.True(t, written)

		written, err = repo.MarkExpired(ctx, active.ID)
		require.NoError(t, err)
		assert.False(t, written)

		got, err := repo.GetByID(ctx, active.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusExpired, got.Status)
	})

	t.Run("soft delete hides the row", func(t *testing.T) {
		vendor, err := repo.SoftDelete(ctx, done.ID)
		require.NoError(t, err)
		assert.Equal(t, "PT Lama", vendor)

		all, err := repo.List(ctx, repository.LetterFilter{Scope: repository.ScopeAll})
		require.NoError(t, err)
		for _, l := range all {
			assert.NotEqual(t, done.ID, l.ID)
		}

		vendor, err = repo.SoftDelete(ctx, 999_999)
		require.NoError(t, err)
		assert.Empty(t, vendor)
	})

	t.Run("update unknown id", func(t *testing.T) {
		err := repo.Update(ctx, &domain.Letter{ID: 999_999, Vendor: "x"})
		assert.ErrorIs(t, err, domain.ErrLetterNotFound)
	})
}

func TestAssetAndActivityRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	assets := postgres.NewAssetRepository(pool)
	activity := postgres.NewActivityRepository(pool)
	ctx := context.Background()

	asset, err := assets.Create(ctx, &domain.Asset{
		AssetNumber: "ATTB-001",
		AssetType:   "Trafo",
		Quantity:    1,
		Unit:        domain.DefaultUnit,
		WeightKg:    10,
		RatePerKg:   domain.DefaultRatePerKg,
		Status:      domain.StatusDraft,
		CurrentStep: domain.FirstStep,
		InputBy:     domain.DefaultInputBy,
	})
	require.NoError(t, err)
	require.NotEmpty(t, asset.ID)

	updated, err := assets.UpdateStatus(ctx, asset.ID, 3, "Penilaian")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentStep)
	assert.Equal(t, "Penilaian", updated.Status)

	require.NoError(t, activity.Append(ctx, &domain.ActivityEntry{
		Action:  domain.ActionUpdateStatus,
		Target:  "ATTB-001",
		AssetID: &asset.ID,
	}))

	logs, err := activity.ListByAsset(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.SystemActor, logs[0].Actor)

	require.NoError(t, assets.SoftDelete(ctx, asset.ID))
	require.NoError(t, assets.SoftDelete(ctx, asset.ID))

	list, err := assets.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDispatchLedger_Integration(t *testing.T) {
	pool := setupTestDB(t)
	server := postgres.NewDispatchLedger(pool, 0)
	cli := postgres.NewDispatchLedger(pool, 0)
	ctx := context.Background()
	key := "dispatch:telegram:report:2024-06-10"

	ok, err := server.Claim(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	// a second process sharing the database sees the claim
	ok, err = cli.Claim(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cli.Claim(ctx, "dispatch:email:digest:2024-06-10", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = pool.Exec(ctx, `UPDATE dispatch_claims SET expires_at = NOW() - INTERVAL '1 minute' WHERE claim_key = $1`, key)
	require.NoError(t, err)
	ok, err = cli.Claim(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepositories_WithoutPool(t *testing.T) {
	_, err := postgres.NewLetterRepository(nil).List(context.Background(), repository.LetterFilter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = postgres.NewAssetRepository(nil).List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = postgres.NewDispatchLedger(nil, 0).Claim(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
