package profit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MauererM/profit/date"
)

// Manual data sources. Both implement Provider, so the completion engine
// needs no special-cased branch for "ask the user": manual entry is just
// another data source, selected by configuration.

// ManualFile serves point prices the user maintains by hand in a JSONL file.
// It is the fallback for symbols no automated provider covers (and the only
// source for symbols marked manual-only).
//
// A line carries the symbol alongside the usual point fields:
//
//	{"symbol":"PENSION-FUND","on":"2023-06-30","price":120.4}
type ManualFile struct {
	Path string
}

func (m *ManualFile) Name() string { return "manual-file" }

func (m *ManualFile) Fetch(_ context.Context, symbol string, r date.Range) ([]PricePoint, error) {
	f, err := os.Open(m.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no manual data at all, not an error
		}
		return nil, &ProviderError{Provider: m.Name(), Err: err}
	}
	defer f.Close()

	type jline struct {
		Symbol string   `json:"symbol"`
		On     Date     `json:"on"`
		Price  *float64 `json:"price"`
	}

	var points []PricePoint
	scanner := bufio.NewScanner(f)
	i := 0
	for scanner.Scan() {
		i++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" {
			continue
		}
		var jl jline
		if err := json.Unmarshal([]byte(txt), &jl); err != nil {
			return nil, &ProviderError{Provider: m.Name(), Err: fmt.Errorf("parse error %s:%d: %w", m.Path, i, err)}
		}
		if jl.Symbol != symbol || jl.Price == nil || !r.Contains(jl.On) {
			continue
		}
		points = append(points, Point(jl.On, *jl.Price))
	}
	if err := scanner.Err(); err != nil {
		return nil, &ProviderError{Provider: m.Name(), Err: err}
	}
	return points, nil
}

// Prompter asks the user for prices interactively, one day at a time. An
// empty answer skips the day, leaving it for the carry-forward or
// unavailable policy downstream.
//
// A Fetch blocks until the user has answered; the engine tolerates this
// since already-flushed cache state is never touched by a pending prompt.
type Prompter struct {
	In  io.Reader // defaults to os.Stdin
	Out io.Writer // defaults to os.Stderr

	scanner *bufio.Scanner
}

func (p *Prompter) Name() string { return "manual-prompt" }

func (p *Prompter) Fetch(ctx context.Context, symbol string, r date.Range) ([]PricePoint, error) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(in)
	}

	var points []PricePoint
	for day := r.From; !day.After(r.To); day = day.Add(1) {
		if err := ctx.Err(); err != nil {
			return points, err
		}
		if !day.IsBusinessDay() {
			continue // markets are closed, carry-forward bridges these
		}
		fmt.Fprintf(out, "%s %s price (empty to skip): ", symbol, day)
		if !p.scanner.Scan() {
			break // input exhausted, keep what we have
		}
		answer := strings.TrimSpace(p.scanner.Text())
		if answer == "" {
			continue
		}
		price, err := strconv.ParseFloat(answer, 64)
		if err != nil || price < 0 {
			fmt.Fprintf(out, "invalid price %q, skipping %s\n", answer, day)
			continue
		}
		points = append(points, Point(day, price))
	}
	return points, nil
}
