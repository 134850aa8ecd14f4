package screener

import (
	"math"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/config"
	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/market"
	"github.com/areddy/alphaseeker/internal/modules/scoring"
)

// barPeriod covers the 50-day moving average plus indicator warmup
const barPeriod = "6mo"

// Service runs the full screening pipeline for a region: one parallel batch
// bar fetch, cheap technical gates per ticker, then the expensive
// fundamental fetch and scoring only for technical survivors, and finally
// the diversity-constrained selection. The staging keeps per-ticker
// provider calls down to the handful of tickers that earn them.
type Service struct {
	store     *market.Store
	universe  market.Universe
	technical *TechnicalFilter
	funda     *FundamentalFilter
	model     *scoring.Model
	cfg       config.ScreenConfig
	scans     *gocache.Cache
	log       zerolog.Logger
}

// NewService creates a screening service
func NewService(
	store *market.Store,
	universe market.Universe,
	model *scoring.Model,
	cfg config.ScreenConfig,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		universe:  universe,
		technical: NewTechnicalFilter(cfg),
		funda:     NewFundamentalFilter(cfg, universe),
		model:     model,
		cfg:       cfg,
		scans:     gocache.New(time.Hour, 2*time.Hour),
		log:       log.With().Str("service", "screener").Logger(),
	}
}

// Scan returns the ranked buy shortlist for a region, reusing a recent scan
// when one is cached
func (s *Service) Scan(region domain.Region) ([]domain.Candidate, error) {
	if cached, ok := s.scans.Get(string(region)); ok {
		return cached.([]domain.Candidate), nil
	}
	return s.ScanFresh(region)
}

// ScanFresh runs the pipeline end to end, bypassing the scan cache.
// Returns market.ErrNoMarketData when the initial batch fetch is fully
// empty; every other upstream failure degrades to exclusion.
func (s *Service) ScanFresh(region domain.Region) ([]domain.Candidate, error) {
	started := time.Now()
	tickers := s.universe.Tickers(region)

	batch, err := s.store.FetchBatch(tickers, barPeriod)
	if err != nil {
		return nil, err
	}

	// Stage 1+2: technical gates, local and cheap
	type survivor struct {
		ticker string
		bars   domain.BarSeries
		tech   *TechnicalResult
	}
	var survivors []survivor
	for _, ticker := range tickers {
		bars, ok := batch[ticker]
		if !ok {
			continue
		}
		tech, pass := s.technical.Evaluate(bars, region)
		if !pass {
			continue
		}
		survivors = append(survivors, survivor{ticker: ticker, bars: bars, tech: tech})
	}

	s.log.Info().
		Str("region", string(region)).
		Int("universe", len(tickers)).
		Int("technical_pass", len(survivors)).
		Msg("Technical screen complete")

	// Stage 3+4: fundamentals and scoring, one provider call per survivor
	var candidates []domain.Candidate
	for _, sv := range survivors {
		snap, err := s.store.Snapshot(sv.ticker)
		if err != nil {
			s.log.Debug().Err(err).Str("ticker", sv.ticker).Msg("Snapshot fetch failed, excluding")
			continue
		}

		pass, reason := s.funda.Evaluate(sv.ticker, snap, region)
		if !pass {
			s.log.Debug().Str("ticker", sv.ticker).Str("reason", reason).Msg("Fundamental reject")
			continue
		}

		result := s.model.Score(sv.bars, snap)
		candidates = append(candidates, domain.Candidate{
			Ticker:      sv.ticker,
			Price:       round2(sv.tech.Price),
			Score:       result.Score,
			Components:  result.Components,
			Sector:      snap.Sector,
			Beta:        snap.BetaOrDefault(),
			RSI:         round2(sv.tech.RSI),
			VolumeShock: round2(sv.tech.VolumeShock),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	final := SelectDiverse(candidates, s.cfg)

	s.log.Info().
		Str("region", string(region)).
		Int("scored", len(candidates)).
		Int("selected", len(final)).
		Dur("took", time.Since(started)).
		Msg("Scan complete")

	s.scans.Set(string(region), final, gocache.DefaultExpiration)
	return final, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
