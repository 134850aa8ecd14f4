package market

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/areddy/alphaseeker/internal/domain"
)

// Universe defines the tradable ticker sets per region. It is read-only
// after load; concurrent scans share it freely.
type Universe struct {
	IndiaEquities []string `yaml:"india_equities"`
	IndiaETFs     []string `yaml:"india_etfs"`
	USEquities    []string `yaml:"us_equities"`
	USETFs        []string `yaml:"us_etfs"`
}

// DefaultUniverse returns the built-in scanning universe: a Nifty 500 proxy
// plus commodity ETFs for India, a Nasdaq/S&P large-cap proxy plus index
// ETFs for the US.
func DefaultUniverse() Universe {
	return Universe{
		IndiaEquities: []string{
			"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
			"HINDUNILVR.NS", "SBIN.NS", "BHARTIARTL.NS", "ITC.NS", "KOTAKBANK.NS",
			"LICI.NS", "LT.NS", "AXISBANK.NS", "ASIANPAINT.NS", "HCLTECH.NS",
			"MARUTI.NS", "TITAN.NS", "BAJFINANCE.NS", "SUNPHARMA.NS", "ULTRACEMCO.NS",
			"ONGC.NS", "NTPC.NS", "POWERGRID.NS", "TATASTEEL.NS", "TATAMOTORS.NS",
			"M&M.NS", "ADANIPORTS.NS", "COALINDIA.NS", "WIPRO.NS", "BPCL.NS",
			"BEL.NS", "ZOMATO.NS", "JIOFIN.NS", "HAL.NS", "DLF.NS",
			"VBL.NS", "TRENT.NS", "SIEMENS.NS", "IOC.NS", "GRASIM.NS",
		},
		IndiaETFs: []string{
			"GOLDBEES.NS", "SILVERBEES.NS", "NIFTYBEES.NS", "BANKBEES.NS",
		},
		USEquities: []string{
			"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "TSLA", "BRK-B", "LLY", "AVGO",
			"JPM", "V", "UNH", "PG", "MA", "HD", "CVX", "MRK", "ABBV", "COST",
			"AMD", "NFLX", "INTC", "CSCO", "CMCSA", "PEP", "ADBE", "TXN", "QCOM", "TMUS",
			"CRM", "WMT", "XOM", "BAC", "ACN", "LIN", "MCD", "DIS", "TMO", "ABT",
		},
		USETFs: []string{
			"GLD", "SLV", "USO", "SPY", "QQQ", "IWM",
		},
	}
}

// LoadUniverse loads a universe from a YAML file, falling back to the
// default when the path is empty.
func LoadUniverse(path string) (Universe, error) {
	if path == "" {
		return DefaultUniverse(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Universe{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return Universe{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return u, nil
}

// Tickers returns the merged, deduplicated ticker list for a region.
// Sorted so scan order is deterministic.
func (u Universe) Tickers(region domain.Region) []string {
	var combined []string
	switch region {
	case domain.RegionIndia:
		combined = append(append([]string{}, u.IndiaEquities...), u.IndiaETFs...)
	default:
		combined = append(append([]string{}, u.USEquities...), u.USETFs...)
	}

	seen := make(map[string]bool, len(combined))
	out := combined[:0]
	for _, t := range combined {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// IsKnownFund reports whether a ticker belongs to the fund allowlist or
// matches the domestic fund naming pattern. Used when the provider fails to
// classify the quote type.
func (u Universe) IsKnownFund(ticker string) bool {
	if strings.Contains(ticker, "BEES") {
		return true
	}
	for _, etf := range u.IndiaETFs {
		if ticker == etf {
			return true
		}
	}
	for _, etf := range u.USETFs {
		if ticker == etf {
			return true
		}
	}
	return false
}
