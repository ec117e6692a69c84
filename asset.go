package profit

import (
	"fmt"
	"slices"
)

// AssetKind separates the two valuation models.
type AssetKind string

const (
	// Account assets (bank accounts, cash) are valued by their balance.
	Account AssetKind = "account"
	// Investment assets (securities, funds, crypto) are valued as held
	// quantity times market price.
	Investment AssetKind = "investment"
)

// Asset is one holding: its identity, its valuation model, and its dated
// record history.
type Asset struct {
	Name     string
	Kind     AssetKind
	Currency string // native currency of balances and prices

	// Symbol names the market-data series for investments. Accounts have
	// no symbol.
	Symbol string

	// ManualOnly excludes the asset's symbol from automated providers: its
	// prices come from the manual file or the prompt only.
	ManualOnly bool

	records []Record // kept sorted by date
}

// Validate checks the asset definition.
func (a *Asset) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("asset has no name")
	}
	if a.Kind != Account && a.Kind != Investment {
		return fmt.Errorf("asset %q: unknown kind %q", a.Name, a.Kind)
	}
	if err := ValidateCurrency(a.Currency); err != nil {
		return fmt.Errorf("asset %q: %w", a.Name, err)
	}
	if a.Kind == Investment && a.Symbol == "" {
		return fmt.Errorf("asset %q: an investment needs a symbol", a.Name)
	}
	return nil
}

// AddRecord validates and inserts a record, keeping the history sorted.
// Same-day records keep their insertion order.
//
// Money records on an account must be in the account's currency: the balance
// replay sums them, and a sum cannot mix currencies. Payouts and fees on
// investments may carry a foreign currency, they are converted at valuation
// time.
func (a *Asset) AddRecord(r Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("asset %q: %w", a.Name, err)
	}
	switch r.Type {
	case RecordBuy, RecordSell:
		if a.Kind != Investment {
			return fmt.Errorf("asset %q: %s records only apply to investments", a.Name, r.Type)
		}
	case RecordBalance, RecordDeposit, RecordWithdraw:
		if a.Kind != Account {
			return fmt.Errorf("asset %q: %s records only apply to accounts", a.Name, r.Type)
		}
	}
	if a.Kind == Account {
		if c := r.Amount.Currency(); c != "" && c != a.Currency {
			return fmt.Errorf("asset %q: a %s record in %s does not match the account currency %s", a.Name, r.Type, c, a.Currency)
		}
	}
	i := len(a.records)
	for i > 0 && a.records[i-1].On.After(r.On) {
		i--
	}
	a.records = slices.Insert(a.records, i, r)
	return nil
}

// Records returns the asset's history, sorted by date. The returned slice is
// shared, callers must not mutate it.
func (a *Asset) Records() []Record { return a.records }

// FirstRecord returns the date of the earliest record.
func (a *Asset) FirstRecord() (Date, bool) {
	if len(a.records) == 0 {
		return Date{}, false
	}
	return a.records[0].On, true
}

// QuantityAt replays buys and sells and returns the quantity held at the end
// of day.
func (a *Asset) QuantityAt(day Date) Quantity {
	var q Quantity
	for _, r := range a.records {
		if r.On.After(day) {
			break
		}
		switch r.Type {
		case RecordBuy:
			q = q.Add(r.Quantity)
		case RecordSell:
			q = q.Sub(r.Quantity)
		}
	}
	return q
}

// BalanceAt replays the account history and returns the balance at the end
// of day, in the asset's native currency. A balance record resets the
// absolute value; deposits and payouts add; withdrawals and fees subtract.
func (a *Asset) BalanceAt(day Date) Money {
	b := M(0, a.Currency)
	for _, r := range a.records {
		if r.On.After(day) {
			break
		}
		switch r.Type {
		case RecordBalance:
			b = r.Amount
		case RecordDeposit, RecordPayout:
			b = b.Add(r.Amount)
		case RecordWithdraw, RecordFee:
			b = b.Sub(r.Amount)
		}
	}
	return b
}

// Flows returns the external cash flows into (+) and out of (-) the asset
// within the range, in native currency by date. Flows are what the return
// computation adjusts for: deposits and buys are inflows, withdrawals and
// sells outflows; payouts and fees are performance, not flows.
func (a *Asset) Flows(from, to Date) []Record {
	var flows []Record
	for _, r := range a.records {
		if r.On.Before(from) || r.On.After(to) {
			continue
		}
		switch r.Type {
		case RecordDeposit, RecordWithdraw, RecordBuy, RecordSell:
			flows = append(flows, r)
		}
	}
	return flows
}
