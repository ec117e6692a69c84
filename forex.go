package profit

import (
	"context"
	"fmt"
)

// Currency conversion rides on the exact same machinery as security prices:
// an exchange rate history is just another cached series whose symbol is the
// currency pair, so acquisition, conflict handling, markers and carry-forward
// all come for free.

// PairSymbol returns the synthetic cache symbol for the from/to rate series,
// e.g. PairSymbol("EUR","USD") == "EURUSD". Both codes must be known ISO-4217
// currencies.
func PairSymbol(from, to string) (string, error) {
	if err := ValidateCurrency(from); err != nil {
		return "", err
	}
	if err := ValidateCurrency(to); err != nil {
		return "", err
	}
	return from + to, nil
}

// IsPairSymbol reports whether symbol names a currency pair series, and if so
// the two currency codes.
func IsPairSymbol(symbol string) (from, to string, ok bool) {
	if len(symbol) != 6 {
		return "", "", false
	}
	from, to = symbol[:3], symbol[3:]
	if ValidateCurrency(from) != nil || ValidateCurrency(to) != nil {
		return "", "", false
	}
	return from, to, true
}

// Rates converts price series between currencies using cached rate series.
type Rates struct {
	Completer *Completer
}

// Complete acquires the from/to rate series over tl, exactly the way prices
// are acquired. Converting a currency to itself needs no data, so the
// identity pair performs no cache or provider interaction at all.
func (x *Rates) Complete(ctx context.Context, from, to string, tl Timeline) ([]Gap, error) {
	if from == to {
		return nil, nil
	}
	pair, err := PairSymbol(from, to)
	if err != nil {
		return nil, err
	}
	return x.Completer.Complete(ctx, pair, tl)
}

// rate returns the from/to rate series over tl, materialized with the
// completer's carry-forward policy. When the direct pair has no cached data
// at all but the inverse pair does, the inverse is used day by day.
func (x *Rates) rate(from, to string, tl Timeline) (*Series, error) {
	pair, err := PairSymbol(from, to)
	if err != nil {
		return nil, err
	}
	direct, err := x.Completer.Completed(pair, tl)
	if err != nil {
		return nil, err
	}
	if hasAnyPrice(direct) {
		return direct, nil
	}

	inverse, err := x.Completer.Completed(to+from, tl)
	if err != nil {
		return nil, err
	}
	if !hasAnyPrice(inverse) {
		return direct, nil // both empty, keep the all-unavailable direct view
	}
	out := NewSeries(pair)
	for day, p := range inverse.Values() {
		if p.Unavailable || p.Price == 0 {
			out.points.Append(day, Unavailable(day))
			continue
		}
		out.points.Append(day, Point(day, 1/p.Price))
	}
	return out, nil
}

func hasAnyPrice(s *Series) bool {
	for _, p := range s.Values() {
		if !p.Unavailable {
			return true
		}
	}
	return false
}

// Convert returns the native series expressed in the reporting currency, one
// point per day of tl. A day is unavailable in the result as soon as either
// the native value or the rate is unavailable: a partially convertible value
// is no value.
//
// The identity conversion returns its input unchanged.
func (x *Rates) Convert(native *Series, from, to string, tl Timeline) (*Series, error) {
	if from == to {
		return native, nil
	}
	rate, err := x.rate(from, to, tl)
	if err != nil {
		return nil, err
	}
	out := NewSeries(fmt.Sprintf("%s/%s", native.Symbol(), to))
	for day := range tl.Days() {
		value, vok := native.Price(day)
		r, rok := rate.Price(day)
		if !vok || !rok {
			out.points.Append(day, Unavailable(day))
			continue
		}
		out.points.Append(day, Point(day, value*r))
	}
	return out, nil
}
