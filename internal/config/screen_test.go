package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScreenConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultScreenConfig().Validate())
}

func TestScreenConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ScreenConfig)
	}{
		{"empty volatility band", func(c *ScreenConfig) { c.VolatilityMinPct = 9; c.VolatilityMaxPct = 8 }},
		{"empty rsi band", func(c *ScreenConfig) { c.RSIMin = 70; c.RSIMax = 50 }},
		{"zero picks", func(c *ScreenConfig) { c.MaxPicks = 0 }},
		{"swap margin below 1", func(c *ScreenConfig) { c.SwapMargin = 0.9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultScreenConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadScreenConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadScreenConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScreenConfig(), cfg)
}

func TestLoadScreenConfig_OverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen.yaml")
	yaml := "take_profit_pct: 15\nmax_picks: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadScreenConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 15.0, cfg.TakeProfitPct)
	assert.Equal(t, 3, cfg.MaxPicks)
	// Untouched keys keep their defaults
	assert.Equal(t, 31, cfg.LockDays)
	assert.Equal(t, 1.2, cfg.SwapMargin)
}

func TestLoadScreenConfig_RejectsDegenerateOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("swap_margin: 0.5\n"), 0644))

	_, err := LoadScreenConfig(path)
	assert.Error(t, err)
}
