package profit

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the user-facing TOML configuration. Everything has a sensible
// default so an empty file is a valid one.
type Config struct {
	// ReportingCurrency is the currency all values and returns are
	// expressed in.
	ReportingCurrency string `toml:"reporting_currency"`

	// WindowDays is the default timeline length, ending today.
	WindowDays int `toml:"window_days"`

	// Providers is the fallback chain, in order. Known names: "eodhd",
	// "yahoo", "manual-file".
	Providers []string `toml:"providers"`

	// Interactive enables the price prompt for days no provider served.
	Interactive bool `toml:"interactive"`

	// CarryForwardPrices and CarryForwardRates control whether a missing
	// price or rate is bridged by the last known value in reports. They
	// are independent: carried prices with strict rates is a valid setup.
	CarryForwardPrices bool `toml:"carry_forward_prices"`
	CarryForwardRates  bool `toml:"carry_forward_rates"`

	ReturnMode ReturnMode `toml:"return_mode"`

	// Workers bounds concurrent provider fetches.
	Workers int `toml:"workers"`

	// StorePath and AssetsPath locate the price cache and the asset files.
	StorePath  string `toml:"store_path"`
	AssetsPath string `toml:"assets_path"`

	// ManualFile is the JSONL file served by the "manual-file" provider.
	ManualFile string `toml:"manual_file"`

	// EODHDToken authenticates against the EODHD API. The EODHD_TOKEN
	// environment variable takes precedence.
	EODHDToken string `toml:"eodhd_token"`

	Groups []GroupConfig `toml:"group"`
}

// GroupConfig is one [[group]] table.
type GroupConfig struct {
	Name   string   `toml:"name"`
	Assets []string `toml:"assets"`
}

// DefaultConfig returns the configuration used when a field (or the whole
// file) is absent.
func DefaultConfig() Config {
	return Config{
		ReportingCurrency:  "EUR",
		WindowDays:         365,
		Providers:          []string{"eodhd", "yahoo", "manual-file"},
		CarryForwardPrices: true,
		CarryForwardRates:  true,
		ReturnMode:         ReturnSimple,
		Workers:            4,
		StorePath:          "marketdata",
		AssetsPath:         "assets",
		ManualFile:         "marketdata/manual.jsonl",
	}
}

// LoadConfig reads a TOML configuration file over the defaults. A missing
// file yields the defaults.
func LoadConfig(filename string) (Config, error) {
	c := DefaultConfig()
	b, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("cannot read config %q: %w", filename, err)
	}
	if err := toml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("cannot parse config %q: %w", filename, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid config %q: %w", filename, err)
	}
	return c, nil
}

// Validate checks the configuration for values that would only fail later.
func (c Config) Validate() error {
	if err := ValidateCurrency(c.ReportingCurrency); err != nil {
		return err
	}
	if c.WindowDays < 1 {
		return fmt.Errorf("window_days must be at least 1, got %d", c.WindowDays)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.ReturnMode {
	case ReturnSimple, ReturnDietz:
	default:
		return fmt.Errorf("unknown return_mode %q (want %q or %q)", c.ReturnMode, ReturnSimple, ReturnDietz)
	}
	for _, p := range c.Providers {
		switch p {
		case "eodhd", "yahoo", "manual-file":
		default:
			return fmt.Errorf("unknown provider %q", p)
		}
	}
	return nil
}
