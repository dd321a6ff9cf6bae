package report

import (
	"fmt"

	"github.com/fastygo/sijagad/domain"
)

type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AssetSummary is the dashboard payload for ATTB assets.
type AssetSummary struct {
	TotalAssets int          `json:"total_assets"`
	TotalValue  float64      `json:"total_value"`
	ByCategory  []NamedCount `json:"by_category"`
	ByStatus    []NamedCount `json:"by_status"`
}

// AssetStats counts assets per category and per workflow step.
func AssetStats(assets []domain.Asset) AssetSummary {
	var (
		totalValue float64
		catOrder   []string
		catCount   = make(map[string]int)
		stepCount  = make([]int, domain.LastStep+1)
	)

	for _, a := range assets {
		totalValue += a.EstimatedValue

		category := a.AssetType
		if category == "" {
			category = "Lainnya"
		}
		if _, seen := catCount[category]; !seen {
			catOrder = append(catOrder, category)
		}
		catCount[category]++

		step := a.CurrentStep
		if step < domain.FirstStep {
			step = domain.FirstStep
		}
		if step <= domain.LastStep {
			stepCount[step]++
		}
	}

	byCategory := make([]NamedCount, 0, len(catOrder))
	for _, c := range catOrder {
		byCategory = append(byCategory, NamedCount{Name: c, Value: catCount[c]})
	}

	byStatus := make([]NamedCount, 0, domain.LastStep)
	for step := domain.FirstStep; step <= domain.LastStep; step++ {
		byStatus = append(byStatus, NamedCount{Name: fmt.Sprintf("Tahap %d", step), Value: stepCount[step]})
	}

	return AssetSummary{
		TotalAssets: len(assets),
		TotalValue:  totalValue,
		ByCategory:  byCategory,
		ByStatus:    byStatus,
	}
}
