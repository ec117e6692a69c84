package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/MauererM/profit"
	"github.com/google/subcommands"
)

type valueCmd struct {
	on string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "show the value of every asset on a day" }
func (*valueCmd) Usage() string {
	return `pft value [-on <date>] [<asset>...]

  Shows each asset's value in the reporting currency on the given day
  (today by default), and the total. Assets whose value cannot be computed
  that day are listed as unavailable and excluded from the total.

`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "Day to value (YYYY-MM-DD). Defaults to today.")
}

func (c *valueCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return fail(err)
	}
	on := profit.Today()
	if c.on != "" {
		if on, err = profit.ParseDate(c.on); err != nil {
			return fail(err)
		}
	}
	assets := a.assets
	if f.NArg() > 0 {
		if assets = selectAssets(a.assets, f.Args()); len(assets) != f.NArg() {
			return fail(fmt.Errorf("unknown asset in %v", f.Args()))
		}
	}

	// A single day still needs a small timeline so that carry-forward has
	// something to reach back into.
	tl, err := profit.NewTimeline(on.Add(-7), on)
	if err != nil {
		return fail(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Values on %s (%s)\n\n", on, a.cfg.ReportingCurrency)
	var series []*profit.Series
	for _, asset := range assets {
		vs, err := a.valuer.ValueSeries(asset, tl)
		if err != nil {
			return fail(err)
		}
		series = append(series, vs)
		if v, ok := vs.Price(on); ok {
			fmt.Fprintf(&b, "* %s: %.2f\n", asset.Name, v)
		} else {
			fmt.Fprintf(&b, "* %s: unavailable\n", asset.Name)
		}
	}
	total := profit.AggregateSeries("total", tl, series...)
	if v, ok := total.Price(on); ok {
		fmt.Fprintf(&b, "\n**Total: %.2f**\n", v)
	} else {
		fmt.Fprintf(&b, "\n**Total: unavailable**\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// selectAssets filters assets by name, keeping the requested order.
func selectAssets(assets []*profit.Asset, names []string) []*profit.Asset {
	byName := make(map[string]*profit.Asset, len(assets))
	for _, a := range assets {
		byName[a.Name] = a
	}
	var out []*profit.Asset
	for _, name := range names {
		if a, ok := byName[name]; ok {
			out = append(out, a)
		}
	}
	return out
}
