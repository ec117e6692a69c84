package cmd

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/MauererM/profit"
	"github.com/google/subcommands"
)

type recordCmd struct {
	on       string
	amount   float64
	currency string
	quantity float64
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "append a record to an asset's history" }
func (*recordCmd) Usage() string {
	return `pft record <asset> <type> [-on <date>] [-amount <n>] [-quantity <n>]

  Appends one record to the asset's file, e.g.:

  $ pft record broker-etf buy -quantity 10
  $ pft record checking deposit -amount 500
  $ pft record checking balance -on 2025-01-31 -amount 12345.67

  Types: balance, deposit, withdraw, buy, sell, payout, fee.
  The whole file is validated and rewritten in canonical order.

`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "on", "", "Day of the record (YYYY-MM-DD). Defaults to today.")
	f.Float64Var(&c.amount, "amount", 0, "Amount, for money records.")
	f.StringVar(&c.currency, "currency", "", "Currency of the amount. Defaults to the asset's currency.")
	f.Float64Var(&c.quantity, "quantity", 0, "Quantity, for buy and sell records.")
}

func (c *recordCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Println("expected exactly an asset name and a record type")
		return subcommands.ExitUsageError
	}
	name, kind := f.Arg(0), profit.RecordType(f.Arg(1))

	a, err := loadApp()
	if err != nil {
		return fail(err)
	}
	assets := selectAssets(a.assets, []string{name})
	if len(assets) == 0 {
		return fail(fmt.Errorf("unknown asset %q", name))
	}
	asset := assets[0]

	on := profit.Today()
	if c.on != "" {
		if on, err = profit.ParseDate(c.on); err != nil {
			return fail(err)
		}
	}
	currency := c.currency
	if currency == "" {
		currency = asset.Currency
	}
	rec := profit.Record{
		On:       on,
		Type:     kind,
		Amount:   profit.M(c.amount, currency),
		Quantity: profit.Q(c.quantity),
	}
	if err := asset.AddRecord(rec); err != nil {
		return fail(err)
	}

	filename := filepath.Join(a.cfg.AssetsPath, asset.Name+".jsonl")
	if err := profit.SaveAsset(filename, asset); err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s %s for %s in %s\n", kind, on, asset.Name, filename)
	return subcommands.ExitSuccess
}
