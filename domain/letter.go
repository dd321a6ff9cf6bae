package domain

import (
	"strings"
	"time"
)

// Letter statuses.
const (
	StatusActive  = "Aktif"
	StatusNew     = "Baru"
	StatusExpired = "Expired"
	StatusDone    = "Selesai"
)

// Categories used to split the export workbook.
const (
	CategoryExecution   = "Jaminan Pelaksanaan"
	CategoryMaintenance = "Jaminan Pemeliharaan"
)

// Letter is a tracked guarantee document issued for a contract.
// Dates are kept as the text the operator supplied and parsed on demand.
type Letter struct {
	ID              int64     `json:"id"`
	Vendor          string    `json:"vendor"`
	Work            string    `json:"pekerjaan"`
	ContractNumber  string    `json:"nomor_kontrak"`
	ContractStart   string    `json:"tanggal_awal_kontrak"`
	Amount          int64     `json:"nominal_jaminan"`
	GuaranteeType   string    `json:"jenis_garansi"`
	GuaranteeNumber string    `json:"nomor_garansi"`
	IssuingBank     string    `json:"bank_penerbit"`
	GuaranteeStart  string    `json:"tanggal_awal_garansi"`
	GuaranteeEnd    string    `json:"tanggal_akhir_garansi"`
	Status          string    `json:"status"`
	Category        string    `json:"kategori"`
	FileURL         *string   `json:"file_url"`
	Location        *string   `json:"lokasi"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsTerminalStatus reports whether the automated sweep must leave the status alone.
func IsTerminalStatus(status string) bool {
	switch strings.TrimSpace(status) {
	case StatusExpired, StatusDone:
		return true
	}
	return false
}

func (l *Letter) IsTerminal() bool {
	return l != nil && IsTerminalStatus(l.Status)
}

// ExpiryDate parses GuaranteeEnd.
func (l *Letter) ExpiryDate() (time.Time, error) {
	if l == nil {
		return time.Time{}, ErrInvalidDate
	}
	return ParseDate(l.GuaranteeEnd)
}
