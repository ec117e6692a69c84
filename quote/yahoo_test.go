package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MauererM/profit"
	"github.com/MauererM/profit/date"
)

func unix(t *testing.T, day string) int64 {
	t.Helper()
	return date.MustParse(day).Time().Unix()
}

func TestYahooFetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprintf(w, `{"chart":{"result":[{
			"timestamp":[%d,%d,%d],
			"indicators":{"quote":[{"close":[100.5,null,102.0]}]}
		}]}}`, unix(t, "2023-01-02"), unix(t, "2023-01-03"), unix(t, "2023-01-04"))
	}))
	defer server.Close()

	p := &Yahoo{BaseURL: server.URL, Client: server.Client()}
	points, err := p.Fetch(context.Background(), "VT.US", testRange(t, "2023-01-01", "2023-01-05"))
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v8/finance/chart/VT.US" {
		t.Errorf("requested %q", gotPath)
	}
	// The null close is dropped, not turned into a zero price.
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2: %v", len(points), points)
	}
	if points[0].On != date.MustParse("2023-01-02") || points[0].Price != 100.5 {
		t.Errorf("got %v, want 100.5 on 2023-01-02", points[0])
	}
	if points[1].Price != 102.0 {
		t.Errorf("got %v, want 102.0", points[1])
	}
}

func TestYahooFetchPairTicker(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{"close":[]}]}}]}}`))
	}))
	defer server.Close()

	p := &Yahoo{BaseURL: server.URL, Client: server.Client()}
	if _, err := p.Fetch(context.Background(), "EURUSD", testRange(t, "2023-01-01", "2023-01-05")); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v8/finance/chart/EURUSD=X" {
		t.Errorf("requested %q, want the =X pair ticker", gotPath)
	}
}

func TestYahooNoSeriesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{}}],"error":null}}`))
	}))
	defer server.Close()

	p := &Yahoo{BaseURL: server.URL, Client: server.Client()}
	points, err := p.Fetch(context.Background(), "VT.US", testRange(t, "2023-01-01", "2023-01-05"))
	if err != nil || points != nil {
		t.Errorf("a response without series data is no data: got %v, %v", points, err)
	}
}

func TestYahooTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := &Yahoo{BaseURL: server.URL, Client: server.Client()}
	_, err := p.Fetch(context.Background(), "VT.US", testRange(t, "2023-01-01", "2023-01-05"))
	var pe *profit.ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("got %v, want a *profit.ProviderError", err)
	}
}

func TestYahooOutOfRangeDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[{
			"timestamp":[%d],
			"indicators":{"quote":[{"close":[100.0]}]}
		}]}}`, time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC).Unix())
	}))
	defer server.Close()

	p := &Yahoo{BaseURL: server.URL, Client: server.Client()}
	points, err := p.Fetch(context.Background(), "VT.US", testRange(t, "2023-01-01", "2023-01-05"))
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 0 {
		t.Errorf("points outside the requested range must be dropped, got %v", points)
	}
}
