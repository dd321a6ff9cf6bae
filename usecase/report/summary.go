package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fastygo/sijagad/domain"
)

const (
	topOwners      = 5
	ownerNameRunes = 15
)

var statusColors = map[string]string{
	domain.StatusActive:  "#10B981",
	domain.StatusNew:     "#34D399",
	domain.StatusExpired: "#EF4444",
	domain.StatusDone:    "#3B82F6",
}

const defaultColor = "#9CA3AF"

type Totals struct {
	Letters int   `json:"total_surat"`
	Amount  int64 `json:"total_nominal"`
	Expired int   `json:"total_expired"`
}

type StatusSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type OwnerBar struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

// Summary is the analytics payload for the letters dashboard.
type Summary struct {
	Totals   Totals        `json:"summary"`
	PieChart []StatusSlice `json:"pie_chart"`
	BarChart []OwnerBar    `json:"bar_chart"`
}

// Summarize aggregates non-deleted letters. Status groups keep first-seen order.
func Summarize(letters []domain.Letter) Summary {
	var (
		total       = decimal.Zero
		expired     int
		statusOrder []string
		statusCount = make(map[string]int)
		ownerSums   = make(map[string]decimal.Decimal)
	)

	for _, l := range letters {
		amount := decimal.NewFromInt(l.Amount)
		total = total.Add(amount)

		if strings.EqualFold(strings.TrimSpace(l.Status), domain.StatusExpired) {
			expired++
		}

		status := l.Status
		if status == "" {
			status = "Unknown"
		}
		if _, seen := statusCount[status]; !seen {
			statusOrder = append(statusOrder, status)
		}
		statusCount[status]++

		owner := l.Vendor
		if owner == "" {
			owner = "Unknown"
		}
		ownerSums[owner] = ownerSums[owner].Add(amount)
	}

	pie := make([]StatusSlice, 0, len(statusOrder))
	for _, status := range statusOrder {
		pie = append(pie, StatusSlice{Name: status, Value: statusCount[status], Color: StatusColor(status)})
	}

	return Summary{
		Totals: Totals{
			Letters: len(letters),
			Amount:  total.IntPart(),
			Expired: expired,
		},
		PieChart: pie,
		BarChart: topOwnerBars(ownerSums),
	}
}

// StatusColor returns the chart colour for a status label.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return defaultColor
}

func topOwnerBars(sums map[string]decimal.Decimal) []OwnerBar {
	owners := make([]string, 0, len(sums))
	for owner := range sums {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool {
		if c := sums[owners[i]].Cmp(sums[owners[j]]); c != 0 {
			return c > 0
		}
		return owners[i] < owners[j]
	})
	if len(owners) > topOwners {
		owners = owners[:topOwners]
	}

	bars := make([]OwnerBar, 0, len(owners))
	for _, owner := range owners {
		bars = append(bars, OwnerBar{Name: TruncateName(owner), Total: sums[owner].IntPart()})
	}
	return bars
}

// TruncateName shortens display names longer than 15 characters.
func TruncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= ownerNameRunes {
		return name
	}
	return string(runes[:ownerNameRunes]) + "..."
}
