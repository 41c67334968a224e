package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/stocksim/fees"
	"github.com/rustyeddy/stocksim/market"
)

// Config represents the complete simulation configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Fees    FeesConfig    `json:"fees" yaml:"fees"`
	Market  MarketConfig  `json:"market" yaml:"market"`
	Policy  PolicyConfig  `json:"policy" yaml:"policy"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	Investment float64  `json:"investment" yaml:"investment"`
	Codes      []string `json:"codes" yaml:"codes"`
}

// FeesConfig contains the commission schedule
type FeesConfig struct {
	BuyRate       float64 `json:"buy_rate" yaml:"buy_rate"`
	SellRate      float64 `json:"sell_rate" yaml:"sell_rate"`
	MinCommission float64 `json:"min_commission" yaml:"min_commission"`
	RoundLot      int64   `json:"round_lot" yaml:"round_lot"`
}

// Schedule converts the config into a fees.Schedule.
func (fc FeesConfig) Schedule() fees.Schedule {
	return fees.Schedule{
		BuyRate:       fc.BuyRate,
		SellRate:      fc.SellRate,
		MinCommission: fc.MinCommission,
	}
}

// MarketConfig locates the historical data and tunes matching
type MarketConfig struct {
	DataDir  string  `json:"data_dir" yaml:"data_dir"`
	Start    string  `json:"start" yaml:"start"` // YYYYMMDD
	End      string  `json:"end" yaml:"end"`
	LimitPct float64 `json:"limit_pct,omitempty" yaml:"limit_pct,omitempty"`
}

// PolicyConfig selects the allocation policy
type PolicyConfig struct {
	Name string `json:"name" yaml:"name"` // "single", "equal" or "free"
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Investment <= 0 {
		return fmt.Errorf("account.investment must be positive")
	}
	if len(c.Account.Codes) == 0 {
		return fmt.Errorf("account.codes is required")
	}
	if c.Fees.BuyRate < 0 || c.Fees.SellRate < 0 {
		return fmt.Errorf("fee rates must be non-negative")
	}
	if c.Fees.MinCommission < 0 {
		return fmt.Errorf("fees.min_commission must be non-negative")
	}
	if c.Fees.RoundLot <= 0 {
		return fmt.Errorf("fees.round_lot must be positive")
	}
	if c.Market.DataDir == "" {
		return fmt.Errorf("market.data_dir is required")
	}
	if c.Market.Start == "" || c.Market.End == "" {
		return fmt.Errorf("market.start and market.end are required")
	}
	if c.Market.Start > c.Market.End {
		return fmt.Errorf("market.start must not be after market.end")
	}
	if c.Market.LimitPct < 0 {
		return fmt.Errorf("market.limit_pct must be non-negative")
	}
	switch c.Policy.Name {
	case "single", "equal", "free":
	default:
		return fmt.Errorf("unknown policy: %s", c.Policy.Name)
	}
	if c.Policy.Name == "single" && len(c.Account.Codes) != 1 {
		return fmt.Errorf("policy 'single' requires exactly one code")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Investment: 100000,
			Codes:      []string{"000001.SZ"},
		},
		Fees: FeesConfig{
			BuyRate:       fees.DefaultBuyRate,
			SellRate:      fees.DefaultSellRate,
			MinCommission: fees.DefaultMinCommission,
			RoundLot:      fees.DefaultRoundLot,
		},
		Market: MarketConfig{
			DataDir:  "./data",
			Start:    "20190101",
			End:      "20200101",
			LimitPct: market.DefaultLimitPct,
		},
		Policy: PolicyConfig{
			Name: "single",
		},
		Journal: JournalConfig{
			Type:       "csv",
			FillsFile:  "./fills.csv",
			EquityFile: "./equity.csv",
		},
	}
}
