package repository

import (
	"context"

	"github.com/fastygo/sijagad/domain"
)

// LetterScope selects which slice of the non-deleted letters a listing returns.
type LetterScope string

const (
	ScopeAll     LetterScope = "all"
	ScopeActive  LetterScope = "active"
	ScopeArchive LetterScope = "archive"
)

type LetterFilter struct {
	Scope LetterScope
}

// LetterRepository never returns soft-deleted rows from its listings.
type LetterRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Letter, error)
	List(ctx context.Context, filter LetterFilter) ([]domain.Letter, error)
	// ListOpen returns letters that are neither deleted nor in a terminal status.
	ListOpen(ctx context.Context) ([]domain.Letter, error)
	Create(ctx context.Context, letter *domain.Letter) (*domain.Letter, error)
	Update(ctx context.Context, letter *domain.Letter) error
	// SoftDelete flips the deleted flag and returns the vendor name, or "" when
	// the id is unknown. Deleting twice is not an error.
	SoftDelete(ctx context.Context, id int64) (string, error)
	// MarkExpired sets status Expired only while the row is still open.
	// It reports whether a row was written.
	MarkExpired(ctx context.Context, id int64) (bool, error)
}
