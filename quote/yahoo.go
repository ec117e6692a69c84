package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MauererM/profit"
	"github.com/MauererM/profit/date"
	"github.com/PaesslerAG/jsonpath"
)

// Yahoo fetches daily closing prices from the Yahoo Finance chart API. It
// needs no token, which makes it the natural fallback behind eodhd.
//
// Currency pair symbols are mapped to Yahoo's convention: "EURUSD" becomes
// "EURUSD=X".
type Yahoo struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	// Client defaults to a daily-expiring disk-cached client.
	Client *http.Client
}

func (p *Yahoo) Name() string { return "yahoo" }

func (p *Yahoo) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return daily()
}

func (p *Yahoo) base() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	return "https://query1.finance.yahoo.com"
}

func (p *Yahoo) ticker(symbol string) string {
	if from, to, ok := profit.IsPairSymbol(symbol); ok {
		return from + to + "=X"
	}
	return symbol
}

// Fetch returns the daily closes for symbol within r.
func (p *Yahoo) Fetch(ctx context.Context, symbol string, r date.Range) ([]profit.PricePoint, error) {
	// The chart API takes unix timestamps; period2 is exclusive so the end
	// day needs one extra day.
	period1 := r.From.Time().Unix()
	period2 := r.To.Add(1).Time().Unix()
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		p.base(), url.PathEscape(p.ticker(symbol)), period1, period2)

	var jobj any
	if err := jwget(ctx, p.client(), addr, &jobj); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, nil // unknown ticker
		}
		return nil, &profit.ProviderError{Provider: p.Name(), Err: err}
	}

	timestamps, err := jsonAt(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		// A well-formed response without series data means no quotes.
		return nil, nil
	}
	closes, err := jsonAt(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, &profit.ProviderError{Provider: p.Name(), Err: err}
	}
	if len(timestamps) != len(closes) {
		return nil, &profit.ProviderError{Provider: p.Name(),
			Err: fmt.Errorf("mismatched response: %d timestamps, %d closes", len(timestamps), len(closes))}
	}

	var points []profit.PricePoint
	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		if !ok {
			continue
		}
		price, ok := closes[i].(float64) // null closes come back as nil
		if !ok {
			continue
		}
		day := date.From(time.Unix(int64(sec), 0).UTC())
		if !r.Contains(day) {
			continue
		}
		points = append(points, profit.Point(day, price))
	}
	return points, nil
}

// jsonAt extracts a list at a jsonpath.
func jsonAt(jobj any, path string) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not a list: %v", path, jval)
	}
	return jlist, nil
}
