package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
)

const assetColumns = `id, no_aset, jenis_aset, merk_type, spesifikasi, jumlah, satuan, konversi_kg,
	tahun_perolehan, umur_pakai, nilai_perolehan, nilai_buku, rupiah_per_kg, harga_tafsiran,
	lokasi, keterangan, foto_url, status, current_step, input_by, is_deleted, created_at`

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository returns a Postgres-backed implementation of AssetRepository.
func NewAssetRepository(pool *pgxpool.Pool) repository.AssetRepository {
	return &assetRepository{pool: pool}
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrAssetNotFound
	}
	query := `SELECT ` + assetColumns + ` FROM attb_assets WHERE id = $1 AND is_deleted = FALSE`
	return scanAsset(r.pool.QueryRow(ctx, query, id))
}

func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}

	query := `SELECT ` + assetColumns + ` FROM attb_assets WHERE is_deleted = FALSE ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]domain.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	if asset == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := available(r.pool); err != nil {
		return nil, err
	}
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO attb_assets (id, no_aset, jenis_aset, merk_type, spesifikasi, jumlah, satuan, konversi_kg,
		tahun_perolehan, umur_pakai, nilai_perolehan, nilai_buku, rupiah_per_kg, harga_tafsiran,
		lokasi, keterangan, foto_url, status, current_step, input_by, is_deleted)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, FALSE)
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		asset.ID,
		asset.AssetNumber,
		asset.AssetType,
		nullString(asset.Brand),
		nullString(asset.Specification),
		asset.Quantity,
		asset.Unit,
		asset.WeightKg,
		asset.AcquiredYear,
		asset.UsefulLife,
		asset.AcquiredValue,
		asset.BookValue,
		asset.RatePerKg,
		asset.EstimatedValue,
		asset.Location,
		nullString(asset.Notes),
		nullString(asset.PhotoURL),
		asset.Status,
		asset.CurrentStep,
		asset.InputBy,
	).Scan(&asset.CreatedAt); err != nil {
		return nil, err
	}
	asset.IsDeleted = false

	return asset, nil
}

func (r *assetRepository) UpdateStatus(ctx context.Context, id string, step int, status string) (*domain.Asset, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrAssetNotFound
	}

	query := `UPDATE attb_assets SET current_step = $2, status = $3
	WHERE id = $1 AND is_deleted = FALSE
	RETURNING ` + assetColumns
	return scanAsset(r.pool.QueryRow(ctx, query, id, step, status))
}

func (r *assetRepository) UpdateDetails(ctx context.Context, id string, patch domain.AssetPatch) (*domain.Asset, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrAssetNotFound
	}
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 8)
	args := []interface{}{id}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.AssetType != nil {
		add("jenis_aset", *patch.AssetType)
	}
	if patch.Brand != nil {
		add("merk_type", *patch.Brand)
	}
	if patch.Specification != nil {
		add("spesifikasi", *patch.Specification)
	}
	if patch.Location != nil {
		add("lokasi", *patch.Location)
	}
	if patch.Notes != nil {
		add("keterangan", *patch.Notes)
	}
	if patch.Quantity != nil {
		add("jumlah", *patch.Quantity)
	}
	if patch.Unit != nil {
		add("satuan", *patch.Unit)
	}
	if patch.BookValue != nil {
		add("nilai_buku", *patch.BookValue)
	}

	query := `UPDATE attb_assets SET ` + strings.Join(sets, ", ") + `
	WHERE id = $1 AND is_deleted = FALSE
	RETURNING ` + assetColumns
	return scanAsset(r.pool.QueryRow(ctx, query, args...))
}

func (r *assetRepository) SoftDelete(ctx context.Context, id string) error {
	if err := available(r.pool); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	const query = `UPDATE attb_assets SET is_deleted = TRUE WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var asset domain.Asset

	if err := row.Scan(
		&asset.ID,
		&asset.AssetNumber,
		&asset.AssetType,
		&asset.Brand,
		&asset.Specification,
		&asset.Quantity,
		&asset.Unit,
		&asset.WeightKg,
		&asset.AcquiredYear,
		&asset.UsefulLife,
		&asset.AcquiredValue,
		&asset.BookValue,
		&asset.RatePerKg,
		&asset.EstimatedValue,
		&asset.Location,
		&asset.Notes,
		&asset.PhotoURL,
		&asset.Status,
		&asset.CurrentStep,
		&asset.InputBy,
		&asset.IsDeleted,
		&asset.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}

	return &asset, nil
}
