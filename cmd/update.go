package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/MauererM/profit"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type updateCmd struct {
	timelineFlags
}

func (*updateCmd) Name() string { return "update" }
func (*updateCmd) Synopsis() string {
	return "fetch missing prices and exchange rates into the local cache"
}
func (*updateCmd) Usage() string {
	return `pft update [-from <date>] [-to <date>]

  Fills the gaps in the local market-data cache for every symbol and
  currency pair the assets need, using the configured provider chain.
  Already cached days are never fetched again.

`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) { c.timelineFlags.SetFlags(f) }

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Println("no arguments expected")
		return subcommands.ExitUsageError
	}
	a, err := loadApp()
	if err != nil {
		return fail(err)
	}
	tl, err := c.timeline(a.cfg)
	if err != nil {
		return fail(err)
	}

	automated, manual := symbols(a.assets)
	rates, err := pairs(a.assets, a.cfg.ReportingCurrency)
	if err != nil {
		return fail(err)
	}

	workers := a.cfg.Workers
	if a.cfg.Interactive {
		workers = 1 // prompts must not interleave
	}

	bar := initProgressBar(len(automated) + len(manual) + len(rates))
	a.completer.OnSymbol = func(string) { bar.Add(1) }
	a.rates.Completer.OnSymbol = a.completer.OnSymbol

	var allGaps []profit.Gap
	gaps, err := a.completer.CompleteAll(ctx, automated, tl, workers)
	allGaps = append(allGaps, gaps...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nWarning: %v\n", err)
	}

	// Manual-only symbols skip the automated chain entirely; their data
	// comes from the manual file and, when enabled, the prompt. Prompting
	// is also why they run sequentially.
	manualCompleter := *a.completer
	manualCompleter.Providers = manualChain(a.completer.Providers)
	for _, symbol := range manual {
		gaps, err := manualCompleter.Complete(ctx, symbol, tl)
		allGaps = append(allGaps, gaps...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nWarning: %v\n", err)
		}
	}

	gaps, err = a.rates.Completer.CompleteAll(ctx, rates, tl, workers)
	allGaps = append(allGaps, gaps...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nWarning: %v\n", err)
	}
	bar.Finish()
	fmt.Println()

	if len(allGaps) > 0 {
		fmt.Printf("%d range(s) remain unavailable, see 'pft gaps':\n", len(allGaps))
		for _, g := range allGaps {
			fmt.Printf("  %s %s\n", g.Symbol, g.Range)
		}
	}
	return subcommands.ExitSuccess
}

// manualChain keeps only the non-automated providers of a chain.
func manualChain(chain profit.Chain) profit.Chain {
	var out profit.Chain
	for _, p := range chain {
		if _, ok := p.(*profit.ManualFile); ok {
			out = append(out, p)
		}
	}
	return out
}

func initProgressBar(maxSymbols int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxSymbols,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Updating market data..."),
	)
}
