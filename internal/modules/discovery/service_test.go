package discovery

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areddy/alphaseeker/internal/config"
	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/market"
	"github.com/areddy/alphaseeker/internal/modules/rebalancing"
	"github.com/areddy/alphaseeker/internal/modules/scoring"
)

type fakeScreener struct {
	picks []domain.Candidate
	err   error
}

func (f *fakeScreener) Scan(region domain.Region) ([]domain.Candidate, error) {
	return f.picks, f.err
}

type fakeHoldings struct {
	holdings []domain.Holding
	err      error
}

func (f *fakeHoldings) Raw(userEmail string) ([]domain.Holding, error) {
	return f.holdings, f.err
}

type emptyProvider struct{}

func (emptyProvider) GetDailyBars(ticker, period string) (domain.BarSeries, error) {
	return nil, errors.New("no data")
}

func (emptyProvider) GetDailyBarsSince(ticker string, since time.Time) (domain.BarSeries, error) {
	return nil, errors.New("no data")
}

func (emptyProvider) GetSnapshot(ticker string) (*domain.Snapshot, error) {
	return nil, errors.New("no data")
}

func newTestRebalancer() *rebalancing.Service {
	log := zerolog.Nop()
	return rebalancing.NewService(market.NewStore(emptyProvider{}, log), scoring.NewModel(log), config.DefaultScreenConfig(), log)
}

func TestRun_ScanFailureAborts(t *testing.T) {
	svc := NewService(&fakeScreener{err: errors.New("provider down")}, &fakeHoldings{}, newTestRebalancer(), zerolog.Nop())

	_, err := svc.Run("a@b.com", domain.RegionIndia)
	assert.Error(t, err)
}

func TestRun_EmptyPortfolioScanOnly(t *testing.T) {
	picks := []domain.Candidate{{Ticker: "TCS.NS", Score: 80}}
	svc := NewService(&fakeScreener{picks: picks}, &fakeHoldings{}, newTestRebalancer(), zerolog.Nop())

	report, err := svc.Run("a@b.com", domain.RegionUS)
	require.NoError(t, err)

	assert.Equal(t, domain.RegionUS, report.Region)
	assert.Equal(t, picks, report.ScanResults)
	assert.Empty(t, report.PortfolioAnalysis)
	assert.Empty(t, report.SwapOpportunities)
	assert.NotNil(t, report.PortfolioAnalysis)
	assert.NotNil(t, report.SwapOpportunities)
}

func TestRun_HoldingsFailureDegradesToScanOnly(t *testing.T) {
	picks := []domain.Candidate{{Ticker: "TCS.NS", Score: 80}}
	holdings := &fakeHoldings{err: errors.New("db locked")}
	svc := NewService(&fakeScreener{picks: picks}, holdings, newTestRebalancer(), zerolog.Nop())

	report, err := svc.Run("a@b.com", domain.RegionIndia)
	require.NoError(t, err)

	assert.Equal(t, picks, report.ScanResults)
	assert.Empty(t, report.PortfolioAnalysis)
}

func TestRun_AnalyzesHoldings(t *testing.T) {
	picks := []domain.Candidate{{Ticker: "TCS.NS", Score: 80}}
	holdings := &fakeHoldings{holdings: []domain.Holding{{
		Ticker:   "INFY.NS",
		Quantity: 10,
		BuyPrice: 1500,
		BuyDate:  time.Now().AddDate(0, 0, -5),
	}}}
	svc := NewService(&fakeScreener{picks: picks}, holdings, newTestRebalancer(), zerolog.Nop())

	report, err := svc.Run("a@b.com", domain.RegionIndia)
	require.NoError(t, err)

	require.Len(t, report.PortfolioAnalysis, 1)
	v := report.PortfolioAnalysis[0]
	assert.Equal(t, "INFY.NS", v.Ticker)
	assert.Equal(t, domain.StatusLocked, v.Status)
	assert.Equal(t, domain.RecommendHold, v.Recommendation)
	assert.Empty(t, report.SwapOpportunities)
}
