// Package cmd implements the CLI application to track holdings.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/MauererM/profit"
	"github.com/MauererM/profit/quote"
	"github.com/google/subcommands"
)

// Commands lists every subcommand a main package should register.
var Commands = []subcommands.Command{
	&updateCmd{},
	&valueCmd{},
	&summaryCmd{},
	&returnCmd{},
	&gapsCmd{},
	&recordCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "pft.toml", "Path to the configuration file")

// app bundles everything a subcommand needs, built from the configuration.
type app struct {
	cfg       profit.Config
	store     *profit.Store
	assets    []*profit.Asset
	completer *profit.Completer
	rates     *profit.Rates
	valuer    *profit.Valuer
}

// loadApp reads the configuration and the asset files and wires the engine.
func loadApp() (*app, error) {
	cfg, err := profit.LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	assets, err := profit.LoadAssets(cfg.AssetsPath)
	if err != nil {
		return nil, err
	}
	store := profit.NewStore(cfg.StorePath)

	var chain profit.Chain
	for _, name := range cfg.Providers {
		switch name {
		case "eodhd":
			chain = append(chain, &quote.EODHD{Token: cfg.EODHDToken})
		case "yahoo":
			chain = append(chain, &quote.Yahoo{})
		case "manual-file":
			chain = append(chain, &profit.ManualFile{Path: cfg.ManualFile})
		}
	}

	completer := &profit.Completer{
		Store:        store,
		Providers:    chain,
		CarryForward: cfg.CarryForwardPrices,
	}
	if cfg.Interactive {
		completer.Prompter = &profit.Prompter{}
	}

	// Rates get their own completer so price and rate carry-forward stay
	// independent settings over the same store.
	rates := &profit.Rates{Completer: &profit.Completer{
		Store:        store,
		Providers:    chain,
		CarryForward: cfg.CarryForwardRates,
		Prompter:     completer.Prompter,
	}}

	return &app{
		cfg:       cfg,
		store:     store,
		assets:    assets,
		completer: completer,
		rates:     rates,
		valuer: &profit.Valuer{
			Completer:         completer,
			Rates:             rates,
			ReportingCurrency: cfg.ReportingCurrency,
			ReturnMode:        cfg.ReturnMode,
		},
	}, nil
}

// timelineFlags is embedded by subcommands that report over a period.
type timelineFlags struct {
	from, to string
}

func (t *timelineFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.from, "from", "", "Start of the period (YYYY-MM-DD). Defaults to window_days before -to.")
	f.StringVar(&t.to, "to", "", "End of the period (YYYY-MM-DD). Defaults to today.")
}

// timeline resolves the flags against the configured default window.
func (t *timelineFlags) timeline(cfg profit.Config) (profit.Timeline, error) {
	to := profit.Today()
	if t.to != "" {
		var err error
		if to, err = profit.ParseDate(t.to); err != nil {
			return profit.Timeline{}, err
		}
	}
	from := to.Add(1 - cfg.WindowDays)
	if t.from != "" {
		var err error
		if from, err = profit.ParseDate(t.from); err != nil {
			return profit.Timeline{}, err
		}
	}
	return profit.NewTimeline(from, to)
}

// fail prints the error and returns the failure status, the uniform ending
// of every subcommand.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// symbols returns the deduplicated market-data symbols of the assets,
// automated-provider ones and manual-only ones separately.
func symbols(assets []*profit.Asset) (automated, manual []string) {
	seen := make(map[string]bool)
	for _, a := range assets {
		if a.Kind != profit.Investment || seen[a.Symbol] {
			continue
		}
		seen[a.Symbol] = true
		if a.ManualOnly {
			manual = append(manual, a.Symbol)
		} else {
			automated = append(automated, a.Symbol)
		}
	}
	return automated, manual
}

// pairs returns the currency pair symbols needed to express every asset in
// the reporting currency.
func pairs(assets []*profit.Asset, reporting string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, a := range assets {
		if a.Currency == reporting || seen[a.Currency] {
			continue
		}
		seen[a.Currency] = true
		pair, err := profit.PairSymbol(a.Currency, reporting)
		if err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
	return out, nil
}
