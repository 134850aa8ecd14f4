package rebalancing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/config"
	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/market"
	"github.com/areddy/alphaseeker/internal/modules/scoring"
	"github.com/areddy/alphaseeker/pkg/formulas"
)

const barPeriod = "6mo"

// Service evaluates an existing holdings set against the same scoring model
// the screener uses and produces per-holding verdicts.
//
// Each holding moves through a small state machine keyed on days held:
// inside the minimum holding period it is LOCKED and always HOLD; once
// UNLOCKED, two independent sell triggers and a swap comparison against the
// best new candidate apply. A data failure for one ticker degrades that
// holding to HOLD with a reason, never aborting the batch.
type Service struct {
	store *market.Store
	model *scoring.Model
	cfg   config.ScreenConfig
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a rebalancing service
func NewService(store *market.Store, model *scoring.Model, cfg config.ScreenConfig, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		model: model,
		cfg:   cfg,
		log:   log.With().Str("service", "rebalancing").Logger(),
		now:   time.Now,
	}
}

// Analyze produces a verdict for every holding. The candidates slice is the
// current scan output, sorted descending by score; only the best candidate
// participates in swap decisions.
func (s *Service) Analyze(holdings []domain.Holding, candidates []domain.Candidate) []domain.RebalanceVerdict {
	if len(holdings) == 0 {
		return []domain.RebalanceVerdict{}
	}

	bestNewScore := 0.0
	bestNewTicker := ""
	if len(candidates) > 0 {
		bestNewScore = candidates[0].Score
		bestNewTicker = candidates[0].Ticker
	}

	verdicts := make([]domain.RebalanceVerdict, 0, len(holdings))
	for _, h := range holdings {
		verdicts = append(verdicts, s.analyzeHolding(h, bestNewScore, bestNewTicker))
	}

	return verdicts
}

func (s *Service) analyzeHolding(h domain.Holding, bestNewScore float64, bestNewTicker string) domain.RebalanceVerdict {
	daysHeld := int(s.now().Sub(h.BuyDate).Hours() / 24)

	verdict := domain.RebalanceVerdict{
		Ticker:         h.Ticker,
		DaysHeld:       daysHeld,
		Status:         domain.StatusUnlocked,
		Recommendation: domain.RecommendHold,
		Trend:          domain.TrendUnknown,
	}

	if daysHeld < s.cfg.LockDays {
		verdict.Status = domain.StatusLocked
		verdict.Reason = fmt.Sprintf("held %d days, %d remaining in lock", daysHeld, s.cfg.LockDays-daysHeld)
		return verdict
	}

	bars, err := s.store.Bars(h.Ticker, barPeriod)
	if err != nil || len(bars) <= 50 {
		verdict.Reason = dataUnavailableReason(err)
		return verdict
	}

	snap, err := s.store.Snapshot(h.Ticker)
	if err != nil {
		verdict.Reason = dataUnavailableReason(err)
		return verdict
	}

	closes := bars.Closes()
	price := bars.LatestClose()

	sma20 := 0.0
	if v := formulas.SMA(closes, 20); v != nil {
		sma20 = *v
	}

	if price > sma20 {
		verdict.Trend = domain.TrendBullish
	} else {
		verdict.Trend = domain.TrendBearish
	}

	score := s.model.Score(bars, snap).Score
	verdict.Score = round1(score)

	plPct := 0.0
	if h.BuyPrice > 0 {
		plPct = (price - h.BuyPrice) / h.BuyPrice * 100
	}
	verdict.PLPercent = round2(plPct)

	// Two independent sell triggers; either alone flags the holding
	var sellReasons []string
	if plPct > s.cfg.TakeProfitPct {
		sellReasons = append(sellReasons, fmt.Sprintf("profit %.1f%% > %.0f%%", plPct, s.cfg.TakeProfitPct))
	}
	if price < sma20 {
		sellReasons = append(sellReasons, "price below 20-day average")
	}

	if len(sellReasons) > 0 {
		verdict.Recommendation = domain.RecommendSell
		verdict.Reason = strings.Join(sellReasons, ", ")
		return verdict
	}

	// Swap only upgrades a HOLD; an existing sell signal is never
	// downgraded to a swap suggestion.
	if bestNewScore > score*s.cfg.SwapMargin {
		verdict.Recommendation = domain.RecommendSwap
		verdict.Reason = fmt.Sprintf("upgrade: %s scores %.1f vs held %.1f", bestNewTicker, bestNewScore, score)
	}

	return verdict
}

// SwapPairings pairs the weakest sell candidates (lowest return first) with
// the top-ranked new candidate for the advisory endpoint
func SwapPairings(verdicts []domain.RebalanceVerdict, candidates []domain.Candidate) []domain.SwapPairing {
	if len(candidates) == 0 {
		return []domain.SwapPairing{}
	}

	var sells []domain.RebalanceVerdict
	for _, v := range verdicts {
		if v.Recommendation == domain.RecommendSell {
			sells = append(sells, v)
		}
	}
	if len(sells) == 0 {
		return []domain.SwapPairing{}
	}

	sort.SliceStable(sells, func(i, j int) bool {
		return sells[i].PLPercent < sells[j].PLPercent
	})

	topBuy := candidates[0]
	pairings := make([]domain.SwapPairing, 0, len(sells))
	for i, sell := range sells {
		pairings = append(pairings, domain.SwapPairing{
			Priority: i + 1,
			Sell:     sell.Ticker,
			Buy:      topBuy.Ticker,
			Reason: fmt.Sprintf("sell weak %s (trend %s, returns %.1f%%) to buy strong %s (score %.1f)",
				sell.Ticker, sell.Trend, sell.PLPercent, topBuy.Ticker, topBuy.Score),
		})
	}

	return pairings
}

func dataUnavailableReason(err error) string {
	if err != nil {
		return fmt.Sprintf("data unavailable: %v", err)
	}
	return "data unavailable: insufficient price history"
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
