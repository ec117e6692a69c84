package profit

import (
	"context"
	"fmt"

	"github.com/MauererM/profit/date"
)

// Provider is the capability to fetch a closing price (or exchange rate)
// series for a symbol over a date range.
//
// A provider returns the points it has; the result may cover less than the
// requested range or be empty, since having no data for a day is not an error.
// It fails with a *ProviderError only for transport-level problems (network
// error, auth failure, malformed response), which a fallback chain recovers
// from by advancing to the next provider.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, r date.Range) ([]PricePoint, error)
}

// ProviderError reports a transport-level provider failure.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Chain is an ordered provider fallback list. The completion engine tries
// each provider in order for every missing range until the range is
// satisfied or the chain is exhausted.
type Chain []Provider
