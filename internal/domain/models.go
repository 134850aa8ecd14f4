package domain

import "time"

// Region identifies the market a scan runs against. It controls the ticker
// universe, currency normalization and the risk-free rate assumption.
type Region string

const (
	RegionIndia Region = "IN"
	RegionUS    Region = "US"
)

// Bar represents a single daily OHLCV record
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// BarSeries is a chronological sequence of daily bars for one ticker.
// Non-trading days are simply absent, not zero-filled.
type BarSeries []Bar

// Closes returns the closing prices in chronological order
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns the daily volumes in chronological order
func (s BarSeries) Volumes() []float64 {
	vols := make([]float64, len(s))
	for i, b := range s {
		vols[i] = float64(b.Volume)
	}
	return vols
}

// LatestClose returns the most recent closing price, or 0 for an empty series
func (s BarSeries) LatestClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Snapshot holds the descriptive and fundamental attributes of a ticker at
// fetch time. Fields the upstream provider did not supply are nil; every
// consumer resolves its own default.
type Snapshot struct {
	Ticker          string   `json:"ticker"`
	QuoteType       string   `json:"quote_type"` // EQUITY or ETF
	Sector          string   `json:"sector"`
	Beta            *float64 `json:"beta,omitempty"`
	RevenueGrowth   *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth  *float64 `json:"earnings_growth,omitempty"`
	ReturnOnEquity  *float64 `json:"return_on_equity,omitempty"`
	DebtToEquity    *float64 `json:"debt_to_equity,omitempty"` // provider convention: percentage
	TargetMeanPrice *float64 `json:"target_mean_price,omitempty"`
	PEGRatio        *float64 `json:"peg_ratio,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
	TotalDebt       *float64 `json:"total_debt,omitempty"`
	TotalAssets     *float64 `json:"total_assets,omitempty"`
}

// IsETF reports whether the snapshot describes a fund-type asset
func (s *Snapshot) IsETF() bool {
	return s != nil && s.QuoteType == "ETF"
}

// BetaOrDefault returns the beta, defaulting to 1.0 when absent
func (s *Snapshot) BetaOrDefault() float64 {
	if s == nil || s.Beta == nil || *s.Beta == 0 {
		return 1.0
	}
	return *s.Beta
}

// ScoreComponents holds the weighted sub-scores behind a composite score
type ScoreComponents struct {
	Momentum    float64 `json:"momentum"`
	Fundamental float64 `json:"fundamental"`
	Valuation   float64 `json:"valuation"`
}

// Candidate is a scored buy opportunity produced by a market scan.
// Immutable once created within a scan.
type Candidate struct {
	Ticker      string          `json:"ticker"`
	Price       float64         `json:"price"`
	Score       float64         `json:"score"`
	Components  ScoreComponents `json:"components"`
	Sector      string          `json:"sector"`
	Beta        float64         `json:"beta"`
	RSI         float64         `json:"rsi"`
	VolumeShock float64         `json:"vol_shock"`
}

// HoldingSource records how a holding entered the ledger
type HoldingSource string

const (
	SourceManual HoldingSource = "MANUAL"
	SourceBroker HoldingSource = "BROKER"
)

// Holding is a position in a user's trade ledger
type Holding struct {
	ID       string        `json:"id"`
	Ticker   string        `json:"ticker"`
	Quantity float64       `json:"quantity"`
	BuyPrice float64       `json:"buy_price"`
	BuyDate  time.Time     `json:"buy_date"`
	Source   HoldingSource `json:"source"`
}

// LockStatus reports whether a holding has cleared its minimum holding period
type LockStatus string

const (
	StatusLocked   LockStatus = "LOCKED"
	StatusUnlocked LockStatus = "UNLOCKED"
)

// Recommendation is the advisory action for a holding
type Recommendation string

const (
	RecommendHold Recommendation = "HOLD"
	RecommendSell Recommendation = "SELL_CANDIDATE"
	RecommendSwap Recommendation = "SWAP_ADVICE"
)

// Trend classifies a holding's price relative to its short moving average
type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
	TrendUnknown Trend = "Unknown"
)

// RebalanceVerdict is the per-holding output of a rebalance scan.
// Derived per scan, never persisted.
type RebalanceVerdict struct {
	Ticker         string         `json:"ticker"`
	DaysHeld       int            `json:"days_held"`
	Status         LockStatus     `json:"status"`
	Recommendation Recommendation `json:"recommendation"`
	Reason         string         `json:"reason"`
	Score          float64        `json:"score"`
	Trend          Trend          `json:"trend"`
	PLPercent      float64        `json:"pl_percent"`
}

// SwapPairing pairs a weak holding with the strongest new candidate
type SwapPairing struct {
	Priority int    `json:"priority"`
	Sell     string `json:"sell"`
	Buy      string `json:"buy"`
	Reason   string `json:"reason"`
}

// ValuationSeries is the reconstructed daily history of a holdings set:
// parallel arrays of dates, mark-to-market values and invested capital.
type ValuationSeries struct {
	Dates          []string  `json:"dates"`
	PortfolioValue []float64 `json:"portfolio_value"`
	InvestedValue  []float64 `json:"invested_value"`
}

// Window enumerates the display windows supported by the valuation engine
type Window string

const (
	Window1Month  Window = "1mo"
	Window3Months Window = "3mo"
	Window6Months Window = "6mo"
	Window1Year   Window = "1y"
	WindowYTD     Window = "ytd"
	WindowAll     Window = "all"
)
