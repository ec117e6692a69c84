package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/MauererM/profit"
	"github.com/google/subcommands"
)

type summaryCmd struct {
	timelineFlags
}

func (*summaryCmd) Name() string { return "summary" }
func (*summaryCmd) Synopsis() string {
	return "show value, payouts, fees and return per asset and group over a period"
}
func (*summaryCmd) Usage() string {
	return `pft summary [-from <date>] [-to <date>]

  One line per asset: end value, payouts and fees collected within the
  period, and the period return. Groups from the configuration get their
  aggregated value.

`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) { c.timelineFlags.SetFlags(f) }

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return fail(err)
	}
	tl, err := c.timeline(a.cfg)
	if err != nil {
		return fail(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Summary %s (%s)\n\n", tl.Range(), a.cfg.ReportingCurrency)
	fmt.Fprintf(&b, "| Asset | Value | Payouts | Fees | Return |\n")
	fmt.Fprintf(&b, "|---|---:|---:|---:|---:|\n")

	valueSeries := make(map[string]*profit.Series, len(a.assets))
	var all []*profit.Series
	for _, asset := range a.assets {
		vs, err := a.valuer.ValueSeries(asset, tl)
		if err != nil {
			return fail(err)
		}
		valueSeries[asset.Name] = vs
		all = append(all, vs)

		payouts, err := a.valuer.PayoutSeries(asset, tl)
		if err != nil {
			return fail(err)
		}
		fees, err := a.valuer.FeeSeries(asset, tl)
		if err != nil {
			return fail(err)
		}

		ret, err := a.valuer.Return(asset, tl)
		retCol := fmt.Sprintf("%.2f%%", 100*ret)
		if err != nil {
			if !errors.Is(err, profit.ErrNoData) {
				return fail(err)
			}
			retCol = "n/a"
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f | %.2f | %s |\n",
			asset.Name, valueCol(vs, tl.End()), sum(payouts), sum(fees), retCol)
	}

	total := profit.AggregateSeries("total", tl, all...)
	fmt.Fprintf(&b, "| **total** | %s | | | |\n", valueCol(total, tl.End()))

	if len(a.cfg.Groups) > 0 {
		fmt.Fprintf(&b, "\n## Groups\n\n")
		for _, gc := range a.cfg.Groups {
			g := profit.Group{Name: gc.Name, Assets: gc.Assets}
			var members []*profit.Series
			for _, m := range g.Members(a.assets) {
				members = append(members, valueSeries[m.Name])
			}
			agg := profit.AggregateSeries(g.Name, tl, members...)
			fmt.Fprintf(&b, "* %s: %s\n", g.Name, valueCol(agg, tl.End()))
		}
	}

	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// valueCol formats the last available value on or before day.
func valueCol(s *profit.Series, day profit.Date) string {
	if v, ok := s.PriceAsOf(day); ok {
		return fmt.Sprintf("%.2f", v)
	}
	return "n/a"
}

// sum adds up all available points of a sparse series.
func sum(s *profit.Series) float64 {
	var total float64
	for _, p := range s.Values() {
		if !p.Unavailable {
			total += p.Price
		}
	}
	return total
}
