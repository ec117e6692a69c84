package profit

import (
	"errors"
	"fmt"
)

// ReturnMode selects the return computation.
type ReturnMode string

const (
	// ReturnSimple is the flow-adjusted simple return:
	// (end - start - net flows) / start.
	ReturnSimple ReturnMode = "simple"
	// ReturnDietz is the modified Dietz return, weighting each flow by the
	// fraction of the period it was invested.
	ReturnDietz ReturnMode = "dietz"
)

// ErrNoData reports that a value could not be computed because the underlying
// market data is unavailable for the whole relevant range.
var ErrNoData = errors.New("no data available")

// Valuer computes value, payout, fee and return series for assets, expressed
// in one reporting currency.
//
// The valuer only reads the cache through materialized views; run completion
// first so the views hold data rather than markers.
type Valuer struct {
	Completer         *Completer
	Rates             *Rates
	ReportingCurrency string
	ReturnMode        ReturnMode
}

// UnitValueSeries returns the asset's per-unit value in the reporting
// currency over tl. For accounts the unit is the whole balance.
func (v *Valuer) UnitValueSeries(a *Asset, tl Timeline) (*Series, error) {
	switch a.Kind {
	case Account:
		native := NewSeries(a.Name)
		for day := range tl.Days() {
			native.points.Append(day, Point(day, a.BalanceAt(day).AsFloat()))
		}
		return v.Rates.Convert(native, a.Currency, v.ReportingCurrency, tl)
	case Investment:
		native, err := v.Completer.Completed(a.Symbol, tl)
		if err != nil {
			return nil, err
		}
		return v.Rates.Convert(native, a.Currency, v.ReportingCurrency, tl)
	default:
		return nil, fmt.Errorf("asset %q: unknown kind %q", a.Name, a.Kind)
	}
}

// ValueSeries returns the asset's total value in the reporting currency over
// tl, one point per day.
//
// A day where the value is not computable (missing price or rate) carries an
// unavailable marker, never a zero: aggregates must be able to exclude it
// rather than silently undervalue. The one exception is a day where nothing
// is held, whose value is known to be zero whatever the market data says.
func (v *Valuer) ValueSeries(a *Asset, tl Timeline) (*Series, error) {
	unit, err := v.UnitValueSeries(a, tl)
	if err != nil {
		return nil, err
	}
	if a.Kind == Account {
		return unit, nil
	}
	out := NewSeries(a.Name)
	for day := range tl.Days() {
		qty := a.QuantityAt(day)
		if qty.IsZero() {
			out.points.Append(day, Point(day, 0))
			continue
		}
		price, ok := unit.Price(day)
		if !ok {
			out.points.Append(day, Unavailable(day))
			continue
		}
		out.points.Append(day, Point(day, qty.AsFloat()*price))
	}
	return out, nil
}

// PayoutSeries returns the asset's payouts within tl in the reporting
// currency, one point per payout day. Payouts form their own series so they
// never distort the value curve.
func (v *Valuer) PayoutSeries(a *Asset, tl Timeline) (*Series, error) {
	return v.recordSeries(a, tl, RecordPayout, +1)
}

// FeeSeries returns the asset's fees within tl in the reporting currency,
// as negative points on their own series.
func (v *Valuer) FeeSeries(a *Asset, tl Timeline) (*Series, error) {
	return v.recordSeries(a, tl, RecordFee, -1)
}

func (v *Valuer) recordSeries(a *Asset, tl Timeline, kind RecordType, sign float64) (*Series, error) {
	out := NewSeries(fmt.Sprintf("%s/%s", a.Name, kind))
	for _, r := range a.records {
		if r.Type != kind || !tl.Contains(r.On) {
			continue
		}
		amount, err := v.convertAt(r.Amount, tl)
		if err != nil {
			return nil, err
		}
		prev, _ := out.Price(r.On) // same-day records accumulate
		out.points.Append(r.On, Point(r.On, prev+sign*amount.value(r.On)))
	}
	return out, nil
}

// converted is a lazily evaluated amount in the reporting currency, resolved
// at a given day's rate.
type converted struct {
	amount float64
	rate   *Series // nil for identity
}

func (c converted) value(day Date) float64 {
	if c.rate == nil {
		return c.amount
	}
	r, ok := c.rate.PriceAsOf(day)
	if !ok {
		return 0
	}
	return c.amount * r
}

func (v *Valuer) convertAt(m Money, tl Timeline) (converted, error) {
	from := m.Currency()
	if from == "" || from == v.ReportingCurrency {
		return converted{amount: m.AsFloat()}, nil
	}
	rate, err := v.Rates.rate(from, v.ReportingCurrency, tl)
	if err != nil {
		return converted{}, err
	}
	return converted{amount: m.AsFloat(), rate: rate}, nil
}

// Return computes the asset's return over tl in the configured mode.
//
// Endpoints are the last available values on or before the timeline's start
// and end; external flows (deposits, withdrawals, buys, sells) within the
// period are adjusted for so that adding money never counts as performance.
// It returns ErrNoData when no value is available at either endpoint.
func (v *Valuer) Return(a *Asset, tl Timeline) (float64, error) {
	values, err := v.ValueSeries(a, tl)
	if err != nil {
		return 0, err
	}
	start, sok := values.PriceAsOf(tl.Start())
	end, eok := values.PriceAsOf(tl.End())
	if !sok || !eok {
		return 0, fmt.Errorf("asset %q over %s: %w", a.Name, tl.Range(), ErrNoData)
	}

	unit, err := v.UnitValueSeries(a, tl)
	if err != nil {
		return 0, err
	}

	var net, weighted float64
	days := float64(tl.Len())
	for _, r := range a.Flows(tl.Start().Add(1), tl.End()) {
		var flow float64
		switch r.Type {
		case RecordDeposit:
			c, err := v.convertAt(r.Amount, tl)
			if err != nil {
				return 0, err
			}
			flow = c.value(r.On)
		case RecordWithdraw:
			c, err := v.convertAt(r.Amount, tl)
			if err != nil {
				return 0, err
			}
			flow = -c.value(r.On)
		case RecordBuy, RecordSell:
			price, ok := unit.PriceAsOf(r.On)
			if !ok {
				return 0, fmt.Errorf("asset %q: no price to value the %s flow on %s: %w", a.Name, r.Type, r.On, ErrNoData)
			}
			flow = r.Quantity.AsFloat() * price
			if r.Type == RecordSell {
				flow = -flow
			}
		}
		net += flow
		// Weight by the fraction of the period the flow was invested.
		weighted += flow * (days - float64(tl.Index(r.On))) / days
	}

	switch v.ReturnMode {
	case ReturnDietz:
		denom := start + weighted
		if denom == 0 {
			return 0, fmt.Errorf("asset %q over %s: %w", a.Name, tl.Range(), ErrNoData)
		}
		return (end - start - net) / denom, nil
	default:
		if start == 0 {
			return 0, fmt.Errorf("asset %q over %s: %w", a.Name, tl.Range(), ErrNoData)
		}
		return (end - start - net) / start, nil
	}
}
