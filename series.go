package profit

import (
	"errors"
	"fmt"
	"iter"

	"github.com/MauererM/profit/date"
)

// PricePoint is a single observation for a symbol: either a closing price in
// the symbol's native currency, or an explicit "unavailable" marker recording
// that no price could be obtained for that day.
type PricePoint struct {
	On          Date
	Price       float64
	Unavailable bool
}

// Unavailable returns the marker point for a day with no obtainable price.
func Unavailable(on Date) PricePoint { return PricePoint{On: on, Unavailable: true} }

// Point returns a regular price point.
func Point(on Date, price float64) PricePoint { return PricePoint{On: on, Price: price} }

// ConflictError reports that a merge tried to replace a cached real value
// with a different real value for the same (symbol, day). Conflicts are
// surfaced for manual resolution, never auto-resolved: provider data
// revisions must not be applied blindly.
type ConflictError struct {
	Symbol    string
	On        Date
	Have, Got float64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting price for %s on %s: cached %v, fetched %v", e.Symbol, e.On, e.Have, e.Got)
}

// Series is the date-indexed price history of one symbol.
//
// A Series is exclusively owned by the Store it was loaded from and is
// mutated only through Merge: days are added, never removed, and an existing
// real value is never silently changed.
type Series struct {
	symbol string
	points date.History[PricePoint]
}

// NewSeries returns an empty series for a symbol.
func NewSeries(symbol string) *Series { return &Series{symbol: symbol} }

// Symbol returns the symbol this series belongs to.
func (s *Series) Symbol() string { return s.symbol }

// Len returns the number of recorded days (markers included).
func (s *Series) Len() int { return s.points.Len() }

// Get returns the point recorded at day, if any.
func (s *Series) Get(day Date) (PricePoint, bool) { return s.points.Get(day) }

// Price returns the real price at day. It reports false for days that are
// absent or explicitly unavailable.
func (s *Series) Price(day Date) (float64, bool) {
	p, ok := s.points.Get(day)
	if !ok || p.Unavailable {
		return 0, false
	}
	return p.Price, true
}

// PriceAsOf returns the last real price on or before day.
func (s *Series) PriceAsOf(day Date) (float64, bool) {
	// Markers must not satisfy a carry-forward lookup, so walk back over them.
	for d := day; ; {
		p, ok := s.points.ValueAsOf(d)
		if !ok {
			return 0, false
		}
		if !p.Unavailable {
			return p.Price, true
		}
		d = p.On.Add(-1)
	}
}

// Values returns an iterator over all points in chronological order.
func (s *Series) Values() iter.Seq2[Date, PricePoint] {
	return func(yield func(Date, PricePoint) bool) {
		for on, p := range s.points.Values() {
			if !yield(on, p) {
				return
			}
		}
	}
}

// Latest returns the most recent point of the series.
func (s *Series) Latest() (PricePoint, bool) {
	if s.points.Len() == 0 {
		return PricePoint{}, false
	}
	_, p := s.points.Latest()
	return p, true
}

// Merge idempotently integrates points into the series:
//
//   - a day absent from the series is added;
//   - a day holding an unavailable marker is overwritten by a real value;
//   - a real value merged onto an equal real value is a no-op;
//   - a real value differing from the cached one yields a *ConflictError.
//
// All non-conflicting points are merged even when conflicts occur; the
// returned error joins every conflict found.
func (s *Series) Merge(points ...PricePoint) error {
	var errs error
	for _, np := range points {
		if !np.Unavailable && np.Price < 0 {
			errs = errors.Join(errs, fmt.Errorf("negative price %v for %s on %s", np.Price, s.symbol, np.On))
			continue
		}
		old, exists := s.points.Get(np.On)
		switch {
		case !exists:
			s.points.Append(np.On, np)
		case old.Unavailable && !np.Unavailable:
			// A real value may replace a marker.
			s.points.Append(np.On, np)
		case old.Unavailable || np.Unavailable:
			// Markers never displace anything else.
		case old.Price != np.Price:
			errs = errors.Join(errs, &ConflictError{Symbol: s.symbol, On: np.On, Have: old.Price, Got: np.Price})
		}
	}
	return errs
}
