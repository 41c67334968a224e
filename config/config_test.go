package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative investment", func(c *Config) { c.Account.Investment = -1 }, "investment"},
		{"no codes", func(c *Config) { c.Account.Codes = nil }, "codes"},
		{"negative buy rate", func(c *Config) { c.Fees.BuyRate = -0.1 }, "fee rates"},
		{"zero lot", func(c *Config) { c.Fees.RoundLot = 0 }, "round_lot"},
		{"no data dir", func(c *Config) { c.Market.DataDir = "" }, "data_dir"},
		{"reversed dates", func(c *Config) { c.Market.Start, c.Market.End = c.Market.End, c.Market.Start }, "start"},
		{"bad policy", func(c *Config) { c.Policy.Name = "martingale" }, "policy"},
		{"single wants one code", func(c *Config) { c.Account.Codes = []string{"A", "B"} }, "single"},
		{"csv needs paths", func(c *Config) { c.Journal.FillsFile = "" }, "fills_file"},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
account:
  investment: 50000
  codes: ["000001.SZ", "600000.SH"]
fees:
  buy_rate: 0.001
  sell_rate: 0.0015
  min_commission: 5.0
  round_lot: 100
market:
  data_dir: ./data
  start: "20190101"
  end: "20191231"
policy:
  name: equal
journal:
  type: sqlite
  db_path: ./runs.db
`
	assert.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.InDelta(t, 50000.0, cfg.Account.Investment, 1e-9)
	assert.Equal(t, []string{"000001.SZ", "600000.SH"}, cfg.Account.Codes)
	assert.Equal(t, "equal", cfg.Policy.Name)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	s := cfg.Fees.Schedule()
	assert.InDelta(t, 0.001, s.BuyRate, 1e-12)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	assert.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("account:\n  investment: -5\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}
