package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/MauererM/profit"
	"github.com/MauererM/profit/date"
	"golang.org/x/time/rate"
)

const eodhdTokenEnv = "EODHD_TOKEN"

// EODHD fetches daily closing prices from eodhd.com.
//
// Currency pair symbols are mapped to the service's forex tickers
// ("EURUSD" becomes "EURUSD.FOREX"); everything else is passed through as an
// eodhd ticker ("NVD.F", "VT.US").
type EODHD struct {
	// Token authenticates the API calls. The EODHD_TOKEN environment
	// variable takes precedence. You can get one at https://eodhd.com/
	Token string

	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	// Client defaults to a daily-expiring disk-cached client.
	Client *http.Client

	// limiter keeps us under the service's request quota.
	limiter *rate.Limiter
}

func (p *EODHD) Name() string { return "eodhd" }

func (p *EODHD) token() string {
	if t := os.Getenv(eodhdTokenEnv); t != "" {
		return t
	}
	return p.Token
}

func (p *EODHD) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return daily()
}

func (p *EODHD) base() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	return "https://eodhd.com"
}

func (p *EODHD) wait(ctx context.Context) error {
	if p.limiter == nil {
		// The free tier allows well over this, but bursts trip the API.
		p.limiter = rate.NewLimiter(rate.Limit(5), 5)
	}
	return p.limiter.Wait(ctx)
}

// ticker maps a cache symbol to an eodhd ticker.
func (p *EODHD) ticker(symbol string) string {
	if from, to, ok := profit.IsPairSymbol(symbol); ok {
		return fmt.Sprintf("%s%s.FOREX", from, to)
	}
	return symbol
}

// Fetch returns the daily adjusted closes for symbol within r.
func (p *EODHD) Fetch(ctx context.Context, symbol string, r date.Range) ([]profit.PricePoint, error) {
	token := p.token()
	if token == "" {
		return nil, &profit.ProviderError{Provider: p.Name(), Err: fmt.Errorf("no API token, set %s", eodhdTokenEnv)}
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		p.base(), p.ticker(symbol), token, r.From, r.To)

	type info struct {
		Date  date.Date `json:"date"`
		Close float64   `json:"adjusted_close"`
	}
	content := make([]info, 0)
	if err := jwget(ctx, p.client(), addr, &content); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, nil // unknown ticker, not a transport failure
		}
		return nil, &profit.ProviderError{Provider: p.Name(), Err: err}
	}

	points := make([]profit.PricePoint, 0, len(content))
	for _, i := range content {
		if !r.Contains(i.Date) {
			continue
		}
		points = append(points, profit.Point(i.Date, i.Close))
	}
	return points, nil
}
