package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastygo/sijagad/domain"
)

// MaxItems caps the itemized part of the upcoming report.
const MaxItems = 15

// DefaultWindowDays is how far ahead the upcoming report looks.
const DefaultWindowDays = 90

// Item is a letter annotated for the upcoming-expiry report.
type Item struct {
	ID             int64
	Vendor         string
	ContractNumber string
	Expiry         time.Time
	DaysRemaining  int
	Tier           domain.Tier
}

// AllClear is the text sent when nothing expires inside the window.
func AllClear(windowDays int) string {
	return fmt.Sprintf("✅ *AMAN TERKENDALI*\nTidak ada surat yang akan expired dalam %d hari ke depan.", windowDays)
}

// FormatUpcoming renders items, already sorted soonest first, as Telegram
// Markdown. The output depends only on its arguments.
func FormatUpcoming(items []Item, today time.Time, windowDays int) string {
	if len(items) == 0 {
		return AllClear(windowDays)
	}

	var b strings.Builder
	b.WriteString("📊 *UPDATE SISA WAKTU SURAT* 📊\n")
	fmt.Fprintf(&b, "_Per Tanggal: %s_\n\n", today.Format(domain.DateLayout))

	shown := items
	if len(shown) > MaxItems {
		shown = shown[:MaxItems]
	}
	for i, item := range shown {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatLine(item))
	}

	fmt.Fprintf(&b, "\n\nTotal: %d Surat mendekati jatuh tempo.", len(items))
	if omitted := len(items) - MaxItems; omitted > 0 {
		fmt.Fprintf(&b, "\n_(...dan %d lainnya)_", omitted)
	}
	return b.String()
}

func formatLine(item Item) string {
	vendor := item.Vendor
	if strings.TrimSpace(vendor) == "" {
		vendor = "Unknown"
	}
	contract := item.ContractNumber
	if strings.TrimSpace(contract) == "" {
		contract = "-"
	}
	return fmt.Sprintf("%s *%s* ⏰ Sisa: *%d Hari* (%s) 📄 No: `%s`",
		Glyph(item.Tier), vendor, item.DaysRemaining, item.Expiry.Format(domain.DateLayout), contract)
}

// Glyph maps an urgency tier to its report marker.
func Glyph(tier domain.Tier) string {
	switch tier {
	case domain.TierCritical:
		return "🔥"
	case domain.TierWarning:
		return "⚠️"
	default:
		return "⏳"
	}
}

// HasItems reports whether text is an itemized report rather than the all-clear sentence.
func HasItems(text string) bool {
	return strings.Contains(text, "Sisa:")
}
