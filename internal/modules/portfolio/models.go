package portfolio

import "github.com/areddy/alphaseeker/internal/domain"

// EnrichedHolding is a holding decorated with live market metrics
type EnrichedHolding struct {
	domain.Holding
	CurrentPrice float64 `json:"current_price"`
	TotalValue   float64 `json:"total_value"`
	PLAmount     float64 `json:"pl_amount"`
	PLPercent    float64 `json:"pl_percent"`
}
