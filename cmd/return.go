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

type returnCmd struct {
	timelineFlags
	mode string
}

func (*returnCmd) Name() string     { return "return" }
func (*returnCmd) Synopsis() string { return "show the period return of each asset" }
func (*returnCmd) Usage() string {
	return `pft return [-from <date>] [-to <date>] [-mode simple|dietz] [<asset>...]

  Computes the flow-adjusted return of each asset over the period. Deposits,
  withdrawals, buys and sells are adjusted for, so adding money never counts
  as performance.

`
}

func (c *returnCmd) SetFlags(f *flag.FlagSet) {
	c.timelineFlags.SetFlags(f)
	f.StringVar(&c.mode, "mode", "", "Return mode, overrides the configuration (simple or dietz).")
}

func (c *returnCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		return fail(err)
	}
	tl, err := c.timeline(a.cfg)
	if err != nil {
		return fail(err)
	}
	if c.mode != "" {
		switch mode := profit.ReturnMode(c.mode); mode {
		case profit.ReturnSimple, profit.ReturnDietz:
			a.valuer.ReturnMode = mode
		default:
			return fail(fmt.Errorf("unknown return mode %q", c.mode))
		}
	}
	assets := a.assets
	if f.NArg() > 0 {
		if assets = selectAssets(a.assets, f.Args()); len(assets) != f.NArg() {
			return fail(fmt.Errorf("unknown asset in %v", f.Args()))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Return %s (%s)\n\n", tl.Range(), a.valuer.ReturnMode)
	for _, asset := range assets {
		ret, err := a.valuer.Return(asset, tl)
		if err != nil {
			if !errors.Is(err, profit.ErrNoData) {
				return fail(err)
			}
			fmt.Fprintf(&b, "* %s: n/a\n", asset.Name)
			continue
		}
		fmt.Fprintf(&b, "* %s: %.2f%%\n", asset.Name, 100*ret)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
