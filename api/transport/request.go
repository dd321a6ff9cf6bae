package transport

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/sijagad/domain"
)

// DefaultActor is recorded when a request does not name its operator.
const DefaultActor = "Admin"

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("nonneg_amount", nonNegativeAmount)
	return v
}

// nonNegativeAmount accepts any value CoerceAmount understands unless it is
// below zero. Unparseable input coerces to 0 and passes.
func nonNegativeAmount(fl validator.FieldLevel) bool {
	amount, ok := domain.ParseAmount(fl.Field().Interface())
	return !ok || !amount.IsNegative()
}

// LetterRequest is the create/update body for a guarantee letter.
// The amount is accepted as a number or a formatted string.
type LetterRequest struct {
	Vendor          string      `json:"vendor" validate:"required"`
	Work            string      `json:"pekerjaan" validate:"required"`
	ContractNumber  string      `json:"nomor_kontrak" validate:"required"`
	ContractStart   string      `json:"tanggal_awal_kontrak" validate:"required"`
	Amount          interface{} `json:"nominal_jaminan" validate:"required,nonneg_amount"`
	GuaranteeType   string      `json:"jenis_garansi" validate:"required"`
	GuaranteeNumber string      `json:"nomor_garansi" validate:"required"`
	IssuingBank     string      `json:"bank_penerbit" validate:"required"`
	GuaranteeStart  string      `json:"tanggal_awal_garansi" validate:"required"`
	GuaranteeEnd    string      `json:"tanggal_akhir_garansi" validate:"required"`
	Status          string      `json:"status"`
	Category        string      `json:"kategori" validate:"required"`
	FileURL         *string     `json:"file_url"`
	Location        *string     `json:"lokasi"`
	UserEmail       string      `json:"user_email"`
}

func (r LetterRequest) ToDomain() *domain.Letter {
	return &domain.Letter{
		Vendor:          r.Vendor,
		Work:            r.Work,
		ContractNumber:  r.ContractNumber,
		ContractStart:   r.ContractStart,
		Amount:          domain.CoerceAmount(r.Amount),
		GuaranteeType:   r.GuaranteeType,
		GuaranteeNumber: r.GuaranteeNumber,
		IssuingBank:     r.IssuingBank,
		GuaranteeStart:  r.GuaranteeStart,
		GuaranteeEnd:    r.GuaranteeEnd,
		Status:          r.Status,
		Category:        r.Category,
		FileURL:         r.FileURL,
		Location:        r.Location,
	}
}

// AssetInput is the body of POST /api/assets/input.
type AssetInput struct {
	AssetNumber    string   `json:"no_aset" validate:"required"`
	AssetType      string   `json:"jenis_aset" validate:"required"`
	Brand          *string  `json:"merk_type"`
	Specification  *string  `json:"spesifikasi"`
	Quantity       *int     `json:"jumlah" validate:"omitempty,gte=0"`
	Unit           string   `json:"satuan"`
	WeightKg       *float64 `json:"konversi_kg" validate:"required,gte=0"`
	AcquiredYear   int      `json:"tahun_perolehan" validate:"required"`
	UsefulLife     int      `json:"umur_pakai" validate:"gte=0"`
	AcquiredValue  float64  `json:"nilai_perolehan" validate:"gte=0"`
	BookValue      float64  `json:"nilai_buku" validate:"gte=0"`
	RatePerKg      *float64 `json:"rupiah_per_kg" validate:"omitempty,gte=0"`
	EstimatedValue float64  `json:"harga_tafsiran"`
	Location       string   `json:"lokasi" validate:"required"`
	Notes          *string  `json:"keterangan"`
	PhotoURL       *string  `json:"foto_url"`
	Status         string   `json:"status"`
	CurrentStep    *int     `json:"current_step" validate:"omitempty,min=1,max=6"`
	InputBy        string   `json:"input_by"`
}

// ToDomain applies the input defaults. The estimate is recomputed downstream,
// so EstimatedValue is ignored.
func (in AssetInput) ToDomain() *domain.Asset {
	asset := &domain.Asset{
		AssetNumber:   in.AssetNumber,
		AssetType:     in.AssetType,
		Brand:         in.Brand,
		Specification: in.Specification,
		Quantity:      1,
		Unit:          in.Unit,
		AcquiredYear:  in.AcquiredYear,
		UsefulLife:    in.UsefulLife,
		AcquiredValue: in.AcquiredValue,
		BookValue:     in.BookValue,
		RatePerKg:     domain.DefaultRatePerKg,
		Location:      in.Location,
		Notes:         in.Notes,
		PhotoURL:      in.PhotoURL,
		Status:        in.Status,
		CurrentStep:   domain.FirstStep,
		InputBy:       in.InputBy,
	}
	if in.Quantity != nil {
		asset.Quantity = *in.Quantity
	}
	if in.WeightKg != nil {
		asset.WeightKg = *in.WeightKg
	}
	if in.RatePerKg != nil {
		asset.RatePerKg = *in.RatePerKg
	}
	if in.CurrentStep != nil {
		asset.CurrentStep = *in.CurrentStep
	}
	return asset
}

type AssetStatusUpdate struct {
	CurrentStep int    `json:"current_step" validate:"required,min=1,max=6"`
	StatusText  string `json:"status_text" validate:"required"`
	UserEmail   string `json:"user_email"`
}

type AssetDetailUpdate struct {
	domain.AssetPatch
	UserEmail string `json:"user_email"`
}

// TelegramUpdate is the subset of a Bot API update the webhook reads.
type TelegramUpdate struct {
	Message *TelegramMessage `json:"message"`
}

type TelegramMessage struct {
	Text string `json:"text"`
	Chat struct {
		ID json.Number `json:"id"`
	} `json:"chat"`
	From struct {
		FirstName string `json:"first_name"`
	} `json:"from"`
}

// ChatID returns the chat identifier as text, or "" when absent.
func (m *TelegramMessage) ChatID() string {
	if m == nil {
		return ""
	}
	return m.Chat.ID.String()
}

// Decode reads a JSON body, keeping numbers exact, and validates it.
func Decode(body []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	return Validate(dst)
}

// Validate runs struct validation and reports failures as INVALID errors
// carrying field → rule pairs.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if fields := ValidationErrors(err); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
}

// ValidationErrors flattens validator errors into field → failed tag.
func ValidationErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		out[ve.Field()] = ve.Tag()
	}
	return out
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "validation failed (" + strings.Join(parts, ", ") + ")"
}

// Unwrap classifies validation failures as INVALID.
func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidPayload
}

// ActorOr returns actor, or DefaultActor when blank.
func ActorOr(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return DefaultActor
	}
	return actor
}

// ParseID reads a numeric path identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.WrapError(domain.ErrCodeInvalid, "invalid id", err)
	}
	return id, nil
}
