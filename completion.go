package profit

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/MauererM/profit/date"
)

// Completer fills the gaps in the local price cache from a provider chain.
//
// Completion is incremental and idempotent: a re-run over the same timeline
// with a cache that already covers it performs no provider calls at all. Data
// obtained from a provider is merged and flushed immediately, so an
// interruption (network outage, ctrl-c at a prompt) never loses what was
// already acquired.
type Completer struct {
	Store     *Store
	Providers Chain

	// CarryForward selects how Completed materializes a day with no
	// obtainable value: the last known value when true, unavailable when
	// false. Carried values are a view, they are never persisted.
	CarryForward bool

	// Prompter, if set, is asked for days no chain provider could deliver
	// before they are marked unavailable.
	Prompter Provider

	// OnSymbol, if set, is called once per symbol completed. Used by the
	// CLI for progress reporting.
	OnSymbol func(symbol string)
}

// Gap is a maximal contiguous range of days missing from one symbol's cache.
type Gap struct {
	Symbol string
	Range  date.Range
}

// missingRanges computes the maximal contiguous ranges of tl for which the
// series holds no point at all. Days carrying an unavailable marker are also
// requested again: markers record a past failure, and delayed publication
// means a later run may well obtain the value.
func missingRanges(s *Series, tl Timeline) []date.Range {
	var ranges []date.Range
	var open bool
	var from Date
	for day := range tl.Days() {
		if _, ok := s.Price(day); ok {
			if open {
				ranges = append(ranges, date.Range{From: from, To: day.Add(-1)})
				open = false
			}
			continue
		}
		if !open {
			from, open = day, true
		}
	}
	if open {
		ranges = append(ranges, date.Range{From: from, To: tl.End()})
	}
	return ranges
}

// Complete acquires every missing day of symbol over tl.
//
// For each missing range, oldest first, providers are tried in chain order;
// whatever points a provider returns are merged and flushed before anything
// else happens. A provider transport failure is logged and the next provider
// takes over. Days still missing after the chain (and the optional prompt)
// are recorded as unavailable markers so the valuation layer can tell
// "not obtainable" from "never asked".
//
// It returns the gaps that ended up marked unavailable, and an error joining
// any merge conflicts and the failure of every provider if none could serve.
func (c *Completer) Complete(ctx context.Context, symbol string, tl Timeline) ([]Gap, error) {
	if c.OnSymbol != nil {
		defer c.OnSymbol(symbol)
	}

	s, err := c.Store.Load(symbol)
	if err != nil {
		return nil, err
	}
	missing := missingRanges(s, tl)
	if len(missing) == 0 {
		return nil, nil
	}

	var errs error
	merge := func(points []PricePoint) error {
		if len(points) == 0 {
			return nil
		}
		// Keep only points inside the timeline and drop marker echoes:
		// only this engine decides what becomes a marker.
		kept := points[:0:0]
		for _, pt := range points {
			if !pt.Unavailable && tl.Contains(pt.On) {
				kept = append(kept, pt)
			}
		}
		if err := c.Store.Merge(symbol, kept...); err != nil {
			errs = errors.Join(errs, err)
		}
		return c.Store.Flush(symbol)
	}

	for _, r := range missing {
		for _, p := range c.Providers {
			points, err := p.Fetch(ctx, symbol, r)
			if err != nil {
				var pe *ProviderError
				if errors.As(err, &pe) {
					log.Printf("provider %s failed on %s %s: %v", p.Name(), symbol, r, err)
					errs = errors.Join(errs, err)
					continue // next provider in the chain
				}
				return nil, err
			}
			if err := merge(points); err != nil {
				return nil, err
			}
			// Reload the view and stop the chain once the range is covered.
			if s, err = c.Store.Load(symbol); err != nil {
				return nil, err
			}
			if len(missingIn(s, r)) == 0 {
				break
			}
		}
	}

	// The optional interactive source covers whatever the chain left open.
	if s, err = c.Store.Load(symbol); err != nil {
		return nil, err
	}
	if c.Prompter != nil {
		for _, r := range missingRanges(s, tl) {
			points, err := c.Prompter.Fetch(ctx, symbol, r)
			if err != nil && !errors.Is(err, context.Canceled) {
				errs = errors.Join(errs, err)
			}
			if err := merge(points); err != nil {
				return nil, err
			}
		}
		if s, err = c.Store.Load(symbol); err != nil {
			return nil, err
		}
	}

	// Whatever is still open becomes an explicit unavailable marker.
	var gaps []Gap
	leftover := missingRanges(s, tl)
	for _, r := range leftover {
		markers := make([]PricePoint, 0, r.Days())
		for day := r.From; !day.After(r.To); day = day.Add(1) {
			if _, exists := s.Get(day); exists {
				continue // marker from a previous run, already recorded
			}
			markers = append(markers, Unavailable(day))
		}
		if err := c.Store.Merge(symbol, markers...); err != nil {
			errs = errors.Join(errs, err)
		}
		gaps = append(gaps, Gap{Symbol: symbol, Range: r})
	}
	if len(leftover) > 0 {
		if err := c.Store.Flush(symbol); err != nil {
			return gaps, err
		}
	}
	return gaps, errs
}

// missingIn is missingRanges restricted to one range.
func missingIn(s *Series, r date.Range) []date.Range {
	tl, err := date.NewTimeline(r.From, r.To)
	if err != nil {
		return nil
	}
	return missingRanges(s, tl)
}

// Completed returns the materialized view of symbol over tl: every day of the
// timeline gets a point, either the cached value, or the last known value
// carried forward (when CarryForward is set), or an unavailable marker.
//
// The view is computed in-memory from the cache and never persisted, so the
// cache keeps holding observed values only.
func (c *Completer) Completed(symbol string, tl Timeline) (*Series, error) {
	s, err := c.Store.Load(symbol)
	if err != nil {
		return nil, err
	}
	out := NewSeries(symbol)
	for day := range tl.Days() {
		if price, ok := s.Price(day); ok {
			out.points.Append(day, Point(day, price))
			continue
		}
		if c.CarryForward {
			if price, ok := s.PriceAsOf(day); ok {
				out.points.Append(day, Point(day, price))
				continue
			}
		}
		out.points.Append(day, Unavailable(day))
	}
	return out, nil
}

// CompleteAll completes a set of symbols concurrently, bounded by workers.
// Fetches for different symbols run in parallel; merges stay serialized per
// symbol by the store. It returns every gap found and the joined errors.
func (c *Completer) CompleteAll(ctx context.Context, symbols []string, tl Timeline, workers int) ([]Gap, error) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var mu sync.Mutex
	var gaps []Gap
	var errs error

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			g, err := c.Complete(ctx, symbol, tl)
			mu.Lock()
			defer mu.Unlock()
			gaps = append(gaps, g...)
			if err != nil {
				errs = errors.Join(errs, err)
			}
		}()
	}
	wg.Wait()
	return gaps, errs
}
