package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/repository"
)

const letterColumns = `id, vendor, pekerjaan, nomor_kontrak, tanggal_awal_kontrak, nominal_jaminan,
	jenis_garansi, nomor_garansi, bank_penerbit, tanggal_awal_garansi, tanggal_akhir_garansi,
	status, kategori, file_url, lokasi, is_deleted, created_at`

type letterRepository struct {
	pool *pgxpool.Pool
}

// NewLetterRepository returns a Postgres-backed implementation of LetterRepository.
func NewLetterRepository(pool *pgxpool.Pool) repository.LetterRepository {
	return &letterRepository{pool: pool}
}

func (r *letterRepository) GetByID(ctx context.Context, id int64) (*domain.Letter, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}
	query := `SELECT ` + letterColumns + ` FROM letters WHERE id = $1`
	return scanLetter(r.pool.QueryRow(ctx, query, id))
}

func (r *letterRepository) List(ctx context.Context, filter repository.LetterFilter) ([]domain.Letter, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}

	query := `SELECT ` + letterColumns + ` FROM letters WHERE is_deleted = FALSE`
	switch filter.Scope {
	case repository.ScopeActive:
		query += ` AND status NOT IN ('Expired', 'Selesai')`
	case repository.ScopeArchive:
		query += ` AND status IN ('Expired', 'Selesai')`
	}
	query += ` ORDER BY id DESC`

	return r.queryLetters(ctx, query)
}

func (r *letterRepository) ListOpen(ctx context.Context) ([]domain.Letter, error) {
	if err := available(r.pool); err != nil {
		return nil, err
	}
	query := `SELECT ` + letterColumns + ` FROM letters
	WHERE is_deleted = FALSE AND status NOT IN ('Expired', 'Selesai')
	ORDER BY id`
	return r.queryLetters(ctx, query)
}

func (r *letterRepository) Create(ctx context.Context, letter *domain.Letter) (*domain.Letter, error) {
	if letter == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := available(r.pool); err != nil {
		return nil, err
	}

	const query = `
	INSERT INTO letters (vendor, pekerjaan, nomor_kontrak, tanggal_awal_kontrak, nominal_jaminan,
		jenis_garansi, nomor_garansi, bank_penerbit, tanggal_awal_garansi, tanggal_akhir_garansi,
		status, kategori, file_url, lokasi, is_deleted)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE)
	RETURNING id, created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		letter.Vendor,
		letter.Work,
		letter.ContractNumber,
		letter.ContractStart,
		amountText(letter.Amount),
		letter.GuaranteeType,
		letter.GuaranteeNumber,
		letter.IssuingBank,
		letter.GuaranteeStart,
		letter.GuaranteeEnd,
		letter.Status,
		letter.Category,
		nullString(letter.FileURL),
		nullString(letter.Location),
	).Scan(&letter.ID, &letter.CreatedAt); err != nil {
		return nil, err
	}
	letter.IsDeleted = false

	return letter, nil
}

func (r *letterRepository) Update(ctx context.Context, letter *domain.Letter) error {
	if letter == nil {
		return domain.ErrInvalidPayload
	}
	if err := available(r.pool); err != nil {
		return err
	}

	const query = `
	UPDATE letters
	SET vendor = $2,
		pekerjaan = $3,
		nomor_kontrak = $4,
		tanggal_awal_kontrak = $5,
		nominal_jaminan = $6,
		jenis_garansi = $7,
		nomor_garansi = $8,
		bank_penerbit = $9,
		tanggal_awal_garansi = $10,
		tanggal_akhir_garansi = $11,
		status = $12,
		kategori = $13,
		file_url = $14,
		lokasi = $15
	WHERE id = $1
	RETURNING created_at, is_deleted
	`

	if err := r.pool.QueryRow(ctx, query,
		letter.ID,
		letter.Vendor,
		letter.Work,
		letter.ContractNumber,
		letter.ContractStart,
		amountText(letter.Amount),
		letter.GuaranteeType,
		letter.GuaranteeNumber,
		letter.IssuingBank,
		letter.GuaranteeStart,
		letter.GuaranteeEnd,
		letter.Status,
		letter.Category,
		nullString(letter.FileURL),
		nullString(letter.Location),
	).Scan(&letter.CreatedAt, &letter.IsDeleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrLetterNotFound
		}
		return err
	}

	return nil
}

func (r *letterRepository) SoftDelete(ctx context.Context, id int64) (string, error) {
	if err := available(r.pool); err != nil {
		return "", err
	}

	const query = `UPDATE letters SET is_deleted = TRUE WHERE id = $1 RETURNING vendor`

	var vendor string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&vendor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return vendor, nil
}

func (r *letterRepository) MarkExpired(ctx context.Context, id int64) (bool, error) {
	if err := available(r.pool); err != nil {
		return false, err
	}

	const query = `
	UPDATE letters
	SET status = 'Expired'
	WHERE id = $1
	  AND is_deleted = FALSE
	  AND status NOT IN ('Expired', 'Selesai')
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *letterRepository) queryLetters(ctx context.Context, query string, args ...interface{}) ([]domain.Letter, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	letters := make([]domain.Letter, 0)
	for rows.Next() {
		letter, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		letters = append(letters, *letter)
	}
	return letters, rows.Err()
}

func scanLetter(row rowScanner) (*domain.Letter, error) {
	var letter domain.Letter
	var (
		amount *string
		end    *string
	)

	if err := row.Scan(
		&letter.ID,
		&letter.Vendor,
		&letter.Work,
		&letter.ContractNumber,
		&letter.ContractStart,
		&amount,
		&letter.GuaranteeType,
		&letter.GuaranteeNumber,
		&letter.IssuingBank,
		&letter.GuaranteeStart,
		&end,
		&letter.Status,
		&letter.Category,
		&letter.FileURL,
		&letter.Location,
		&letter.IsDeleted,
		&letter.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLetterNotFound
		}
		return nil, err
	}

	letter.Amount = domain.CoerceAmount(amount)
	if end != nil {
		letter.GuaranteeEnd = *end
	}

	return &letter, nil
}
