package profit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// This file contains code to persist one symbol's price history as a JSONL
// file, in a way that is human-readable and git-friendly: one day per line,
// chronologically ordered, so that new data appends cleanly at the end and
// any revision shows up as a one-line diff.
//
// A line is either a real price or an explicit unavailable marker:
//
//	{"on":"2023-01-02","price":134.5}
//	{"on":"2023-01-03","unavailable":true}

// jpoint is the object read from and written to the file using the json parser.
type jpoint struct {
	On          Date     `json:"on"`
	Price       *float64 `json:"price,omitempty"`
	Unavailable bool     `json:"unavailable,omitempty"`
}

// decodeSeries parses a JSONL stream into a series.
// filename is for error messages only.
func decodeSeries(filename string, r io.Reader, symbol string) (*Series, error) {
	s := NewSeries(symbol)
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		txt := scanner.Text()
		if strings.TrimSpace(txt) == "" {
			continue
		}
		var jp jpoint
		if err := json.Unmarshal([]byte(txt), &jp); err != nil {
			return nil, fmt.Errorf("parse error %s:%v: not a correct json: %w", filename, i, err)
		}
		if jp.On.IsZero() {
			return nil, fmt.Errorf("parse error %s:%v: missing the property %q with a date", filename, i, "on")
		}
		var p PricePoint
		switch {
		case jp.Unavailable:
			p = Unavailable(jp.On)
		case jp.Price == nil:
			return nil, fmt.Errorf("parse error %s:%v: a line needs a %q or %q property", filename, i, "price", "unavailable")
		default:
			p = Point(jp.On, *jp.Price)
		}
		if err := s.Merge(p); err != nil {
			return nil, fmt.Errorf("parse error %s:%v: %w", filename, i, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse error %s: %w", filename, err)
	}
	return s, nil
}

// decodeSeriesFile reads the persisted history for a symbol. A missing file
// yields an empty series.
func decodeSeriesFile(filename, symbol string) (*Series, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSeries(symbol), nil // empty history
		}
		return nil, fmt.Errorf("load error: cannot open %q for reading: %w", filename, err)
	}
	defer f.Close()
	return decodeSeries(filename, f, symbol)
}

// encodeSeries writes the series as ordered JSONL lines.
func encodeSeries(w io.Writer, s *Series) error {
	bw := bufio.NewWriter(w)
	for _, p := range s.Values() {
		jp := jpoint{On: p.On, Unavailable: p.Unavailable}
		if !p.Unavailable {
			price := p.Price
			jp.Price = &price
		}
		b, err := json.Marshal(jp)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}
