package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/domain"
)

var today = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		days := i * 5
		items[i] = Item{
			ID:             int64(i + 1),
			Vendor:         fmt.Sprintf("PT Vendor %02d", i+1),
			ContractNumber: fmt.Sprintf("K-%02d", i+1),
			Expiry:         today.AddDate(0, 0, days),
			DaysRemaining:  days,
			Tier:           domain.ClassifyDays(days),
		}
	}
	return items
}

func itemLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "Sisa:") {
			out = append(out, line)
		}
	}
	return out
}

func TestFormatUpcoming_Empty(t *testing.T) {
	assert.Equal(t,
		"✅ *AMAN TERKENDALI*\nTidak ada surat yang akan expired dalam 90 hari ke depan.",
		FormatUpcoming(nil, today, 90))
}

func TestFormatUpcoming_CapsAtFifteen(t *testing.T) {
	text := FormatUpcoming(makeItems(16), today, 90)

	assert.Len(t, itemLines(text), 15)
	assert.Contains(t, text, "Total: 16 Surat mendekati jatuh tempo.")
	assert.True(t, strings.HasSuffix(text, "\n_(...dan 1 lainnya)_"))
	assert.NotContains(t, text, "PT Vendor 16")
}

func TestFormatUpcoming_NoOmittedLineAtCap(t *testing.T) {
	text := FormatUpcoming(makeItems(15), today, 90)
	assert.Len(t, itemLines(text), 15)
	assert.NotContains(t, text, "lainnya")
}

func TestFormatUpcoming_LineLayout(t *testing.T) {
	text := FormatUpcoming(makeItems(3), today, 90)

	require.True(t, strings.HasPrefix(text, "📊 *UPDATE SISA WAKTU SURAT* 📊\n_Per Tanggal: 2025-03-01_\n\n"))
	lines := itemLines(text)
	require.Len(t, lines, 3)
	assert.Equal(t, "🔥 *PT Vendor 01* ⏰ Sisa: *0 Hari* (2025-03-01) 📄 No: `K-01`", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "🔥"))
	assert.True(t, strings.HasPrefix(lines[2], "⚠️"))
}

func TestFormatUpcoming_Deterministic(t *testing.T) {
	items := makeItems(20)
	assert.Equal(t, FormatUpcoming(items, today, 90), FormatUpcoming(items, today, 90))
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "🔥", Glyph(domain.ClassifyDays(7)))
	assert.Equal(t, "⚠️", Glyph(domain.ClassifyDays(8)))
	assert.Equal(t, "⚠️", Glyph(domain.ClassifyDays(30)))
	assert.Equal(t, "⏳", Glyph(domain.ClassifyDays(31)))
}

func TestHasItems(t *testing.T) {
	assert.False(t, HasItems(AllClear(90)))
	assert.True(t, HasItems(FormatUpcoming(makeItems(1), today, 90)))
}
