package screener

import (
	"fmt"

	"github.com/areddy/alphaseeker/internal/config"
	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/market"
)

const (
	equityRiskPremium = 0.05
	debtSpread        = 0.02
	taxRate           = 0.25
	defaultWACC       = 0.10

	riskFreeIndia = 0.07
	riskFreeUS    = 0.04
)

// FundamentalFilter applies the second screening stage: growth, quality and
// leverage gates for equities, with a separate pass-through rule set for
// fund-type assets.
type FundamentalFilter struct {
	cfg      config.ScreenConfig
	universe market.Universe
}

// NewFundamentalFilter creates a fundamental filter
func NewFundamentalFilter(cfg config.ScreenConfig, universe market.Universe) *FundamentalFilter {
	return &FundamentalFilter{cfg: cfg, universe: universe}
}

// Evaluate checks a ticker's fundamentals. Returns pass/fail and a reason.
// Missing numeric fields default to 0 before comparison.
func (f *FundamentalFilter) Evaluate(ticker string, snap *domain.Snapshot, region domain.Region) (bool, string) {
	if snap == nil {
		return false, "no attributes"
	}

	if snap.IsETF() || f.universe.IsKnownFund(ticker) {
		// AUM floor is advisory only: provider asset data for funds is
		// too spotty to reject on.
		minAssets := f.cfg.MinETFAssetsUSD
		if region == domain.RegionIndia {
			minAssets = f.cfg.MinETFAssetsINR
		}
		if snap.TotalAssets != nil && *snap.TotalAssets > 0 && *snap.TotalAssets < minAssets {
			return true, "ETF passed (below AUM floor)"
		}
		return true, "ETF passed"
	}

	revGrowth := 0.0
	if snap.RevenueGrowth != nil {
		revGrowth = *snap.RevenueGrowth
	}
	if revGrowth < f.cfg.MinRevenueGrowth {
		return false, fmt.Sprintf("low revenue growth: %.2f", revGrowth)
	}

	roe := 0.0
	if snap.ReturnOnEquity != nil {
		roe = *snap.ReturnOnEquity
	}
	if roe < f.cfg.MinReturnOnEquity {
		return false, fmt.Sprintf("low ROE: %.2f", roe)
	}

	// Moat test: ROE stands in for return on capital employed
	riskFree := riskFreeUS
	if region == domain.RegionIndia {
		riskFree = riskFreeIndia
	}
	wacc := estimateWACC(snap, riskFree)
	if roe-wacc < f.cfg.MinMoatSpread {
		return false, fmt.Sprintf("no moat: ROE-WACC spread %.2f below %.2f", roe-wacc, f.cfg.MinMoatSpread)
	}

	if snap.DebtToEquity != nil && *snap.DebtToEquity > f.cfg.MaxDebtToEquityPct {
		return false, fmt.Sprintf("high debt: %.1f%%", *snap.DebtToEquity)
	}

	return true, "passed"
}

// estimateWACC approximates the weighted average cost of capital from a
// snapshot using a single-factor CAPM cost of equity and a fixed spread
// proxy for cost of debt. Falls back to 10% when capital structure data is
// unusable.
func estimateWACC(snap *domain.Snapshot, riskFree float64) float64 {
	beta := snap.BetaOrDefault()
	costOfEquity := riskFree + beta*equityRiskPremium

	totalDebt := 0.0
	if snap.TotalDebt != nil {
		totalDebt = *snap.TotalDebt
	}
	marketCap := 1.0
	if snap.MarketCap != nil && *snap.MarketCap > 0 {
		marketCap = *snap.MarketCap
	}

	totalValue := marketCap + totalDebt
	if totalValue <= 0 {
		return defaultWACC
	}

	weightEquity := marketCap / totalValue
	weightDebt := totalDebt / totalValue

	costOfDebt := riskFree + debtSpread

	return weightEquity*costOfEquity + weightDebt*costOfDebt*(1-taxRate)
}
