package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fastygo/sijagad/domain"
)

type creatorRecorder struct {
	created []domain.Letter
	actors  []string
	err     error
}

func (c *creatorRecorder) Create(ctx context.Context, letter *domain.Letter, actor string) (*domain.Letter, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, *letter)
	c.actors = append(c.actors, actor)
	return letter, nil
}

func masterWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImport_MapsSheetsToCategories(t *testing.T) {
	header := []interface{}{"Vendor", "PEKERJAAN", "NOMINAL JAMINAN", "TANGGAL AKHIR GARANSI"}
	buf := masterWorkbook(t, map[string][][]interface{}{
		"DATA PELAKSANAAN 2024": {
			header,
			{"PT Satu", "Gardu", "Rp 1.000.000", "2025-01-31 00:00:00"},
			{"", "skipped", "", ""},
		},
		"Pemeliharaan": {
			header,
			{"PT Dua", "", 250000, "31/12/2026"},
		},
	})

	rec := &creatorRecorder{}
	uc := New(nil, rec, Config{}, nil)
	res, err := uc.Import(context.Background(), buf, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.MissingSheets)

	require.Len(t, rec.created, 2)
	byVendor := map[string]domain.Letter{}
	for _, l := range rec.created {
		byVendor[l.Vendor] = l
	}

	first := byVendor["PT Satu"]
	assert.Equal(t, domain.CategoryExecution, first.Category)
	assert.Equal(t, int64(1000000), first.Amount)
	assert.Equal(t, "2025-01-31", first.GuaranteeEnd)
	assert.Equal(t, domain.StatusExpired, first.Status)
	require.NotNil(t, first.Location)
	assert.Equal(t, "Arsip Lama", *first.Location)
	assert.Equal(t, "-", first.ContractNumber)

	second := byVendor["PT Dua"]
	assert.Equal(t, domain.CategoryMaintenance, second.Category)
	assert.Equal(t, int64(250000), second.Amount)
	assert.Equal(t, "2026-12-31", second.GuaranteeEnd)
	assert.Equal(t, domain.StatusActive, second.Status)
	assert.Equal(t, "-", second.Work)
	assert.Equal(t, "Bank Garansi", second.GuaranteeType)

	assert.Equal(t, []string{ImportActor, ImportActor}, rec.actors)
}

func TestImport_ReportsMissingSheets(t *testing.T) {
	buf := masterWorkbook(t, map[string][][]interface{}{
		"PELAKSANAAN": {{"NO"}, {"1"}},
	})
	uc := New(nil, &creatorRecorder{}, Config{}, nil)

	res, err := uc.Import(context.Background(), buf, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, []string{SheetMaintenance}, res.MissingSheets)
}

func TestImport_StopsWhenStoreUnavailable(t *testing.T) {
	buf := masterWorkbook(t, map[string][][]interface{}{
		"PELAKSANAAN": {{"VENDOR"}, {"PT A"}, {"PT B"}},
	})
	uc := New(nil, &creatorRecorder{err: domain.ErrStoreUnavailable}, Config{}, nil)

	_, err := uc.Import(context.Background(), buf, time.Now())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestImport_RejectsGarbage(t *testing.T) {
	uc := New(nil, &creatorRecorder{}, Config{}, nil)
	_, err := uc.Import(context.Background(), bytes.NewBufferString("not a workbook"), time.Now())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestImportDate(t *testing.T) {
	assert.Equal(t, "2024-01-01", importDate("", "2024-01-01"))
	assert.Equal(t, "2025-02-01", importDate("01-02-2025", ""))
	assert.Equal(t, "2025-01-01", importDate("45658", ""))
	assert.Equal(t, "soon", importDate("soon", ""))
}
