package transport

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/domain"
)

const letterBody = `{
	"vendor": "PT A", "pekerjaan": "Gardu", "nomor_kontrak": "K-1",
	"tanggal_awal_kontrak": "2024-01-01", "nominal_jaminan": "Rp 1.500.000",
	"jenis_garansi": "Bank Garansi", "nomor_garansi": "G-1", "bank_penerbit": "BRI",
	"tanggal_awal_garansi": "2024-01-01", "tanggal_akhir_garansi": "2025-01-01",
	"status": "Aktif", "kategori": "Jaminan Pelaksanaan"
}`

func TestDecode_LetterCoercesAmount(t *testing.T) {
	var req LetterRequest
	require.NoError(t, Decode([]byte(letterBody), &req))

	letter := req.ToDomain()
	assert.Equal(t, int64(1500000), letter.Amount)
	assert.Equal(t, "PT A", letter.Vendor)
	assert.Equal(t, DefaultActor, ActorOr(req.UserEmail))
}

func TestDecode_ReportsMissingFieldsByJSONName(t *testing.T) {
	var req LetterRequest
	err := Decode([]byte(`{"vendor":"PT A"}`), &req)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Fields["nominal_jaminan"])
	assert.Equal(t, "required", verr.Fields["kategori"])
	assert.NotContains(t, verr.Fields, "vendor")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestDecode_MalformedJSON(t *testing.T) {
	var req LetterRequest
	err := Decode([]byte(`{`), &req)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestAssetInput_Defaults(t *testing.T) {
	var in AssetInput
	require.NoError(t, Decode([]byte(`{
		"no_aset": "A-1", "jenis_aset": "Trafo", "konversi_kg": 100,
		"tahun_perolehan": 2001, "umur_pakai": 20, "nilai_perolehan": 1, "nilai_buku": 0,
		"harga_tafsiran": 999, "lokasi": "Gudang"
	}`), &in))

	asset := in.ToDomain()
	assert.Equal(t, 1, asset.Quantity)
	assert.Equal(t, float64(domain.DefaultRatePerKg), asset.RatePerKg)
	assert.Equal(t, domain.FirstStep, asset.CurrentStep)
	assert.Equal(t, 100.0, asset.WeightKg)
}

func TestAssetStatusUpdate_StepRange(t *testing.T) {
	var upd AssetStatusUpdate
	err := Decode([]byte(`{"current_step": 7, "status_text": "x"}`), &upd)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "max", verr.Fields["current_step"])
}

func TestTelegramUpdate_ChatID(t *testing.T) {
	var upd TelegramUpdate
	require.NoError(t, Decode([]byte(`{"message":{"text":"/info","chat":{"id":-100123},"from":{"first_name":"Budi"}}}`), &upd))
	require.NotNil(t, upd.Message)
	assert.Equal(t, "-100123", upd.Message.ChatID())
	assert.Equal(t, "Budi", upd.Message.From.FirstName)

	var empty TelegramUpdate
	assert.Equal(t, "", empty.Message.ChatID())
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseID("abc")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	_, err = ParseID("0")
	assert.Error(t, err)
}

func TestDecode_RejectsNegativeAmount(t *testing.T) {
	for _, amount := range []string{`-5000`, `"-5.000"`, `"Rp -1.000.000"`} {
		body := strings.Replace(letterBody, `"Rp 1.500.000"`, amount, 1)

		var req LetterRequest
		err := Decode([]byte(body), &req)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), amount)
		assert.Equal(t, "nonneg_amount", verr.Fields["nominal_jaminan"], amount)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), amount)
	}
}

func TestDecode_AcceptsZeroAndUnparseableAmount(t *testing.T) {
	for _, amount := range []string{`0`, `"-"`, `"Rp 0"`} {
		body := strings.Replace(letterBody, `"Rp 1.500.000"`, amount, 1)
		var req LetterRequest
		require.NoError(t, Decode([]byte(body), &req), amount)
		assert.Zero(t, req.ToDomain().Amount, amount)
	}
}

func TestDecode_JSONNumberAmountKeepsDecimalPoint(t *testing.T) {
	body := strings.Replace(letterBody, `"Rp 1.500.000"`, `1.500`, 1)
	var req LetterRequest
	require.NoError(t, Decode([]byte(body), &req))
	assert.Equal(t, int64(1), req.ToDomain().Amount)
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"vendor": "required", "kategori": "required", "nominal_jaminan": "nonneg_amount",
	}}
	for i := 0; i < 5; i++ {
		assert.Equal(t, "validation failed (kategori: required, nominal_jaminan: nonneg_amount, vendor: required)", err.Error())
	}
}
