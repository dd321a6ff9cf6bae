// Package export writes letters into the reporting workbook and reads master
// workbooks back in.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/domain"
	"github.com/fastygo/sijagad/pkg/logger"
	"github.com/fastygo/sijagad/repository"
)

// Sheet names the template must carry.
const (
	SheetExecution   = "PELAKSANAAN"
	SheetMaintenance = "PEMELIHARAAN"
)

const (
	firstDataRow = 2
	columnCount  = 13
	amountColumn = 6
	missingValue = "-"
)

// ContentType is the media type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers of the template sheets, in column order.
var Headers = []string{
	"NO", "VENDOR", "PEKERJAAN", "NOMOR KONTRAK", "TANGGAL AWAL KONTRAK",
	"NOMINAL JAMINAN", "JENIS GARANSI", "NOMOR GARANSI", "BANK PENERBIT",
	"TANGGAL AWAL GARANSI", "TANGGAL AKHIR GARANSI", "KETERANGAN", "PARAF",
}

type Config struct {
	TemplatePath string
	Location     *time.Location
}

// LetterCreator stores imported letters.
type LetterCreator interface {
	Create(ctx context.Context, letter *domain.Letter, actor string) (*domain.Letter, error)
}

type UseCase struct {
	letters repository.LetterRepository
	creator LetterCreator
	cfg     Config
	logger  *zap.Logger
}

func New(letters repository.LetterRepository, creator LetterCreator, cfg Config, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &UseCase{letters: letters, creator: creator, cfg: cfg, logger: log}
}

// Workbook is a rendered export.
type Workbook struct {
	Filename string
	Data     []byte
}

// FileName returns the download name for an export produced at now.
func FileName(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return fmt.Sprintf("Laporan_SiJAGAD_%s.xlsx", now.Format("20060102"))
}

// Export fills the template with every non-deleted letter, split by category.
func (uc *UseCase) Export(ctx context.Context, now time.Time) (*Workbook, error) {
	if _, err := os.Stat(uc.cfg.TemplatePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to open template", err)
	}

	f, err := excelize.OpenFile(uc.cfg.TemplatePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to open template", err)
	}
	defer f.Close()

	for _, sheet := range []string{SheetExecution, SheetMaintenance} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return nil, domain.ErrTemplateMalformed
		}
	}

	letters, err := uc.letters.List(ctx, repository.LetterFilter{Scope: repository.ScopeAll})
	if err != nil {
		return nil, err
	}

	execution, maintenance := SplitByCategory(letters)
	if err := fillSheet(f, SheetExecution, execution); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to write sheet", err)
	}
	if err := fillSheet(f, SheetMaintenance, maintenance); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to write sheet", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to render workbook", err)
	}

	logger.WithRequestID(ctx, uc.logger).Info("workbook exported",
		zap.Int("pelaksanaan", len(execution)),
		zap.Int("pemeliharaan", len(maintenance)))

	return &Workbook{Filename: FileName(now, uc.cfg.Location), Data: buf.Bytes()}, nil
}

// SplitByCategory matches categories case-insensitively by substring. A letter
// whose category names neither sheet is left out of both.
func SplitByCategory(letters []domain.Letter) (execution, maintenance []domain.Letter) {
	for _, l := range letters {
		category := strings.ToLower(strings.TrimSpace(l.Category))
		if strings.Contains(category, "pelaksanaan") {
			execution = append(execution, l)
		}
		if strings.Contains(category, "pemeliharaan") {
			maintenance = append(maintenance, l)
		}
	}
	return execution, maintenance
}

func fillSheet(f *excelize.File, sheet string, letters []domain.Letter) error {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return err
	}
	amountFormat := "#,##0"
	amountStyle, err := f.NewStyle(&excelize.Style{Border: border, CustomNumFmt: &amountFormat})
	if err != nil {
		return err
	}

	for i, l := range letters {
		row := firstDataRow + i
		values := []interface{}{
			i + 1,
			orMissing(l.Vendor),
			orMissing(l.Work),
			orMissing(l.ContractNumber),
			orMissing(l.ContractStart),
			l.Amount,
			orMissing(l.GuaranteeType),
			orMissing(l.GuaranteeNumber),
			orMissing(l.IssuingBank),
			orMissing(l.GuaranteeStart),
			orMissing(l.GuaranteeEnd),
			"",
			"",
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(columnCount, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, start, end, cellStyle); err != nil {
			return err
		}
		amountCell, _ := excelize.CoordinatesToCellName(amountColumn, row)
		if err := f.SetCellStyle(sheet, amountCell, amountCell, amountStyle); err != nil {
			return err
		}
	}
	return nil
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingValue
	}
	return s
}

// GenerateTemplate writes an empty template with both sheets and header rows.
func GenerateTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range []string{SheetExecution, SheetMaintenance} {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		header := make([]interface{}, len(Headers))
		for j, h := range Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
