package domain

import "time"

const (
	StatusDraft      = "Draft"
	DefaultUnit      = "Unit"
	DefaultRatePerKg = 4300
	DefaultInputBy   = "System Admin"
	FirstStep        = 1
	LastStep         = 6
)

// Asset is an ATTB (decommissioned) asset moving through the disposal workflow.
type Asset struct {
	ID              string    `json:"id"`
	AssetNumber     string    `json:"no_aset"`
	AssetType       string    `json:"jenis_aset"`
	Brand           *string   `json:"merk_type"`
	Specification   *string   `json:"spesifikasi"`
	Quantity        int       `json:"jumlah"`
	Unit            string    `json:"satuan"`
	WeightKg        float64   `json:"konversi_kg"`
	AcquiredYear    int       `json:"tahun_perolehan"`
	UsefulLife      int       `json:"umur_pakai"`
	AcquiredValue   float64   `json:"nilai_perolehan"`
	BookValue       float64   `json:"nilai_buku"`
	RatePerKg       float64   `json:"rupiah_per_kg"`
	EstimatedValue  float64   `json:"harga_tafsiran"`
	Location        string    `json:"lokasi"`
	Notes           *string   `json:"keterangan"`
	PhotoURL        *string   `json:"foto_url"`
	Status          string    `json:"status"`
	CurrentStep     int       `json:"current_step"`
	InputBy         string    `json:"input_by"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecomputeEstimate derives the scrap estimate from weight and rate.
func (a *Asset) RecomputeEstimate() {
	if a == nil {
		return
	}
	a.EstimatedValue = a.WeightKg * a.RatePerKg
}

// AssetPatch lists the fields an operator may edit after input. Nil means unchanged.
type AssetPatch struct {
	AssetType     *string  `json:"jenis_aset,omitempty"`
	Brand         *string  `json:"merk_type,omitempty"`
	Specification *string  `json:"spesifikasi,omitempty"`
	Location      *string  `json:"lokasi,omitempty"`
	Notes         *string  `json:"keterangan,omitempty"`
	Quantity      *int     `json:"jumlah,omitempty"`
	Unit          *string  `json:"satuan,omitempty"`
	BookValue     *float64 `json:"nilai_buku,omitempty"`
}

func (p AssetPatch) IsEmpty() bool {
	return p.AssetType == nil && p.Brand == nil && p.Specification == nil &&
		p.Location == nil && p.Notes == nil && p.Quantity == nil &&
		p.Unit == nil && p.BookValue == nil
}
