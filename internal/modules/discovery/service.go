package discovery

import (
	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/rebalancing"
)

// Screener produces scored, diversity-capped picks for a region
type Screener interface {
	Scan(region domain.Region) ([]domain.Candidate, error)
}

// HoldingsSource yields the plain holdings ledger for a user
type HoldingsSource interface {
	Raw(userEmail string) ([]domain.Holding, error)
}

// Report is the combined output of a discovery run: fresh picks, advice
// for each current holding, and concrete swap suggestions.
type Report struct {
	Region            domain.Region             `json:"region"`
	ScanResults       []domain.Candidate        `json:"scan_results"`
	PortfolioAnalysis []domain.RebalanceVerdict `json:"portfolio_analysis"`
	SwapOpportunities []domain.SwapPairing      `json:"swap_opportunities"`
}

// Service runs the full discovery pass: screen the universe, then judge the
// existing portfolio against the winners
type Service struct {
	screener   Screener
	holdings   HoldingsSource
	rebalancer *rebalancing.Service
	log        zerolog.Logger
}

// NewService creates a discovery service
func NewService(screener Screener, holdings HoldingsSource, rebalancer *rebalancing.Service, log zerolog.Logger) *Service {
	return &Service{
		screener:   screener,
		holdings:   holdings,
		rebalancer: rebalancer,
		log:        log.With().Str("service", "discovery").Logger(),
	}
}

// Run screens the region and analyzes the user's holdings against the picks.
// A screening failure aborts the run; a portfolio read failure degrades to a
// scan-only report.
func (s *Service) Run(userEmail string, region domain.Region) (Report, error) {
	candidates, err := s.screener.Scan(region)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Region:            region,
		ScanResults:       candidates,
		PortfolioAnalysis: []domain.RebalanceVerdict{},
		SwapOpportunities: []domain.SwapPairing{},
	}

	holdings, err := s.holdings.Raw(userEmail)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userEmail).Msg("Holdings unavailable, returning scan only")
		return report, nil
	}
	if len(holdings) == 0 {
		return report, nil
	}

	verdicts := s.rebalancer.Analyze(holdings, candidates)
	report.PortfolioAnalysis = verdicts
	report.SwapOpportunities = rebalancing.SwapPairings(verdicts, candidates)
	return report, nil
}
