package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"instant-swap-go/infrastructure/logger"
	"instant-swap-go/ledger"
	"instant-swap-go/venue"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env     string                  `yaml:"env"`
	Venue   VenueConfig             `yaml:"venue"`
	Swap    SwapConfig              `yaml:"swap"`
	Logger  logger.Config           `yaml:"logger"`
	Metrics MetricsConfig           `yaml:"metrics"`
	Markets map[string]MarketConfig `yaml:"markets"`
	// QuoteWallet is the user's account for the shared quote asset.
	QuoteWallet string `yaml:"quoteWallet"`
}

type VenueConfig struct {
	BaseURL    string  `yaml:"baseURL"`
	WSEndpoint string  `yaml:"wsEndpoint"`
	APIKey     string  `yaml:"apiKey"`
	APISecret  string  `yaml:"apiSecret"`
	RestRate   float64 `yaml:"restRate"`  // REST limiter: tokens per second
	RestBurst  int     `yaml:"restBurst"` // REST limiter: max burst
}

type SwapConfig struct {
	// Leg2SlippageBps pads the observed leg-2 price when budgeting the
	// leg-1 minimum output of a transitive swap.
	Leg2SlippageBps uint64 `yaml:"leg2SlippageBps"`
	// PriceMaxAgeMs invalidates stream quotes older than this.
	PriceMaxAgeMs int `yaml:"priceMaxAgeMs"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics server
}

// MarketConfig names the account references of one venue market.
type MarketConfig struct {
	Market       string `yaml:"market"`
	RequestQueue string `yaml:"requestQueue"`
	EventQueue   string `yaml:"eventQueue"`
	Bids         string `yaml:"bids"`
	Asks         string `yaml:"asks"`
	BaseVault    string `yaml:"baseVault"`
	QuoteVault   string `yaml:"quoteVault"`
	VaultSigner  string `yaml:"vaultSigner"`
	BaseWallet   string `yaml:"baseWallet"`
}

// Accounts converts the configured references into a MarketAccounts bundle.
func (m MarketConfig) Accounts() venue.MarketAccounts {
	return venue.MarketAccounts{
		Market:       ledger.AccountRef(m.Market),
		RequestQueue: ledger.AccountRef(m.RequestQueue),
		EventQueue:   ledger.AccountRef(m.EventQueue),
		Bids:         ledger.AccountRef(m.Bids),
		Asks:         ledger.AccountRef(m.Asks),
		BaseVault:    ledger.AccountRef(m.BaseVault),
		QuoteVault:   ledger.AccountRef(m.QuoteVault),
		VaultSigner:  ledger.AccountRef(m.VaultSigner),
		BaseWallet:   ledger.AccountRef(m.BaseWallet),
	}
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("SWAP_VENUE_API_KEY"); v != "" {
		cfg.Venue.APIKey = v
	}
	if v := os.Getenv("SWAP_VENUE_API_SECRET"); v != "" {
		cfg.Venue.APISecret = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Venue.BaseURL == "" {
		return errors.New("venue.baseURL is required")
	}
	if cfg.Swap.Leg2SlippageBps >= 10000 {
		return errors.New("swap.leg2SlippageBps must be below 10000")
	}
	if cfg.QuoteWallet == "" {
		return errors.New("quoteWallet is required")
	}
	if len(cfg.Markets) == 0 {
		return errors.New("markets config is required")
	}
	for name, mc := range cfg.Markets {
		if mc.Market == "" {
			return fmt.Errorf("market %s: market ref is required", name)
		}
		if mc.BaseVault == "" || mc.QuoteVault == "" {
			return fmt.Errorf("market %s: vault refs are required", name)
		}
		if mc.BaseWallet == "" {
			return fmt.Errorf("market %s: baseWallet is required", name)
		}
	}
	return nil
}
