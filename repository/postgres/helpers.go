package postgres

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/sijagad/domain"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// available guards every query: a nil pool means the service booted without
// database credentials.
func available(pool *pgxpool.Pool) error {
	if pool == nil {
		return domain.ErrStoreUnavailable
	}
	return nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullUUID(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// amountText stores whole currency units as the plain text the legacy rows use.
func amountText(v int64) string {
	return strconv.FormatInt(v, 10)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
