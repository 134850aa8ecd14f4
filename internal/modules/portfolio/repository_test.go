package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areddy/alphaseeker/internal/database"
	"github.com/areddy/alphaseeker/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.Conn())
}

func testHolding(ticker string, qty float64) domain.Holding {
	return domain.Holding{
		Ticker:   ticker,
		Quantity: qty,
		BuyPrice: 1500,
		BuyDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestRepository_AddAndFetch(t *testing.T) {
	repo := newTestRepo(t)

	added, err := repo.Add("a@b.com", testHolding("INFY.NS", 10))
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, domain.SourceManual, added.Source)

	holdings, err := repo.ForUser("a@b.com")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "INFY.NS", holdings[0].Ticker)
	assert.Equal(t, 10.0, holdings[0].Quantity)
	assert.Equal(t, 1500.0, holdings[0].BuyPrice)
	assert.True(t, holdings[0].BuyDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestRepository_RejectsNonPositiveQuantity(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Add("a@b.com", testHolding("INFY.NS", 0))
	assert.Error(t, err)

	_, err = repo.Add("a@b.com", testHolding("INFY.NS", -5))
	assert.Error(t, err)
}

func TestRepository_UserIsolation(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Add("a@b.com", testHolding("INFY.NS", 10))
	require.NoError(t, err)

	holdings, err := repo.ForUser("other@b.com")
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestRepository_DeleteAndReAdd(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Add("a@b.com", testHolding("TCS.NS", 5))
	require.NoError(t, err)
	_, err = repo.Add("a@b.com", testHolding("TCS.NS", 3))
	require.NoError(t, err)

	removed, err := repo.DeleteByTicker("a@b.com", "TCS.NS")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	holdings, err := repo.ForUser("a@b.com")
	require.NoError(t, err)
	assert.Empty(t, holdings)

	// Position can be re-entered cleanly after an exit
	_, err = repo.Add("a@b.com", testHolding("TCS.NS", 7))
	require.NoError(t, err)

	holdings, err = repo.ForUser("a@b.com")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 7.0, holdings[0].Quantity)
}

func TestRepository_ReplaceBrokerHoldingsPreservesManual(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Add("a@b.com", testHolding("MANUAL.NS", 10))
	require.NoError(t, err)

	stale := testHolding("OLD.NS", 4)
	stale.Source = domain.SourceBroker
	_, err = repo.Add("a@b.com", stale)
	require.NoError(t, err)

	fresh := []domain.Holding{
		testHolding("NEW1.NS", 2),
		testHolding("NEW2.NS", 3),
		testHolding("SKIPPED.NS", 0), // zero quantity is dropped
	}
	added, err := repo.ReplaceBrokerHoldings("a@b.com", fresh)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	holdings, err := repo.ForUser("a@b.com")
	require.NoError(t, err)
	require.Len(t, holdings, 3)

	tickers := make(map[string]domain.HoldingSource)
	for _, h := range holdings {
		tickers[h.Ticker] = h.Source
	}
	assert.Equal(t, domain.SourceManual, tickers["MANUAL.NS"])
	assert.Equal(t, domain.SourceBroker, tickers["NEW1.NS"])
	assert.Equal(t, domain.SourceBroker, tickers["NEW2.NS"])
	assert.NotContains(t, tickers, "OLD.NS")
}
