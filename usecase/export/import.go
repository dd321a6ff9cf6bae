package export

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/pkg/logger"
)

// ImportActor is recorded on letters created from a master workbook.
const ImportActor = "Auto Import"

// Defaults for cells a master workbook leaves empty.
const (
	defaultGuaranteeEnd  = "2025-12-31"
	defaultStartDate     = "2024-01-01"
	defaultGuaranteeType = "Bank Garansi"
	defaultLocation      = "Arsip Lama"
)

// ImportResult counts rows per outcome.
type ImportResult struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
	// MissingSheets lists expected sheets the workbook did not carry.
	MissingSheets []string `json:"missing_sheets,omitempty"`
}

// Import reads a master workbook and creates one letter per row that names a
// vendor. Sheets are matched by a case-insensitive substring of their name.
func (uc *UseCase) Import(ctx context.Context, r io.Reader, now time.Time) (ImportResult, error) {
	var result ImportResult

	f, err := excelize.OpenReader(r)
	if err != nil {
		return result, domain.WrapError(domain.ErrCodeInvalid, "unreadable workbook", err)
	}
	defer f.Close()

	log := logger.WithRequestID(ctx, uc.logger)
	targets := []struct {
		marker   string
		category string
	}{
		{SheetExecution, domain.CategoryExecution},
		{SheetMaintenance, domain.CategoryMaintenance},
	}

	for _, target := range targets {
		sheet := findSheet(f.GetSheetList(), target.marker)
		if sheet == "" {
			log.Warn("master workbook sheet not found", zap.String("sheet", target.marker))
			result.MissingSheets = append(result.MissingSheets, target.marker)
			continue
		}

		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return result, domain.WrapError(domain.ErrCodeInvalid, "unreadable sheet "+sheet, err)
		}
		letters, ok := parseRows(rows, target.category, now, uc.cfg.Location)
		if !ok {
			log.Warn("sheet has no VENDOR column", zap.String("sheet", sheet))
			continue
		}

		for i := range letters {
			if _, err := uc.creator.Create(ctx, &letters[i], ImportActor); err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnavailable) {
					return result, err
				}
				log.Warn("import row failed", zap.String("vendor", letters[i].Vendor), zap.Error(err))
				result.Failed++
				continue
			}
			result.Created++
		}
	}

	log.Info("master workbook imported",
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed))
	return result, nil
}

func findSheet(sheets []string, marker string) string {
	for _, name := range sheets {
		if strings.Contains(strings.ToUpper(name), marker) {
			return name
		}
	}
	return ""
}

// parseRows maps a header row plus data rows onto letters. It reports false
// when the header has no VENDOR column.
func parseRows(rows [][]string, category string, now time.Time, loc *time.Location) ([]domain.Letter, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	if _, ok := index["VENDOR"]; !ok {
		return nil, false
	}

	cell := func(row []string, name, fallback string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return fallback
		}
		v := strings.TrimSpace(row[i])
		if v == "" || strings.EqualFold(v, "nan") {
			return fallback
		}
		return v
	}

	letters := make([]domain.Letter, 0, len(rows)-1)
	for _, row := range rows[1:] {
		vendor := cell(row, "VENDOR", "")
		if vendor == "" {
			continue
		}
		end := importDate(cell(row, "TANGGAL AKHIR GARANSI", ""), defaultGuaranteeEnd)
		letters = append(letters, domain.Letter{
			Vendor:          vendor,
			Work:            cell(row, "PEKERJAAN", missingValue),
			ContractNumber:  cell(row, "NOMOR KONTRAK", missingValue),
			ContractStart:   importDate(cell(row, "TANGGAL AWAL KONTRAK", ""), defaultStartDate),
			Amount:          domain.CoerceAmount(cell(row, "NOMINAL JAMINAN", "")),
			GuaranteeType:   cell(row, "JENIS GARANSI", defaultGuaranteeType),
			GuaranteeNumber: cell(row, "NOMOR GARANSI", missingValue),
			IssuingBank:     cell(row, "BANK PENERBIT", missingValue),
			GuaranteeStart:  importDate(cell(row, "TANGGAL AWAL GARANSI", ""), defaultStartDate),
			GuaranteeEnd:    end,
			Status:          importStatus(end, now, loc),
			Category:        category,
			Location:        strPtr(cell(row, "LOKASI", defaultLocation)),
		})
	}
	return letters, true
}

// importDate normalises a cell to the canonical layout. Spreadsheet serial
// numbers are converted; text that parses is rewritten; anything else is kept.
func importDate(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(domain.DateLayout)
		}
	}
	if t, err := domain.ParseDate(raw); err == nil {
		return t.Format(domain.DateLayout)
	}
	if idx := strings.IndexByte(raw, ' '); idx > 0 {
		return raw[:idx]
	}
	return raw
}

func importStatus(end string, now time.Time, loc *time.Location) string {
	expiry, err := domain.ParseDate(end)
	if err != nil {
		return domain.StatusActive
	}
	if domain.DaysRemaining(expiry, now, loc) < 0 {
		return domain.StatusExpired
	}
	return domain.StatusActive
}

func strPtr(s string) *string {
	return &s
}
