package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type gapsCmd struct {
	timelineFlags
}

func (*gapsCmd) Name() string     { return "gaps" }
func (*gapsCmd) Synopsis() string { return "list the days missing from the market-data cache" }
func (*gapsCmd) Usage() string {
	return `pft gaps [-from <date>] [-to <date>]

  Lists, per symbol, the ranges with no cached price over the period.
  Days explicitly marked unavailable count as missing: they are retried on
  the next update.

`
}

func (c *gapsCmd) SetFlags(f *flag.FlagSet) { c.timelineFlags.SetFlags(f) }

func (c *gapsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	all := append(append(automated, manual...), rates...)

	var b strings.Builder
	fmt.Fprintf(&b, "# Gaps %s\n\n", tl.Range())
	found := false
	for _, symbol := range all {
		gaps, err := a.store.Gaps(symbol, tl)
		if err != nil {
			return fail(err)
		}
		for _, g := range gaps {
			fmt.Fprintf(&b, "* %s: %s (%d day(s))\n", g.Symbol, g.Range, g.Range.Days())
			found = true
		}
	}
	if !found {
		fmt.Fprintf(&b, "No gaps, the cache fully covers the period.\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
