package profit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// An asset lives in one JSONL file: a definition line first, then one record
// per line in chronological order.
//
//	{"name":"broker-etf","kind":"investment","currency":"USD","symbol":"VT.US"}
//	{"on":"2023-01-02","type":"buy","quantity":10}
//	{"on":"2023-03-01","type":"payout","amount":12.5,"currency":"USD"}

type jdefinition struct {
	Name       string    `json:"name"`
	Kind       AssetKind `json:"kind"`
	Currency   string    `json:"currency"`
	Symbol     string    `json:"symbol,omitempty"`
	ManualOnly bool      `json:"manual_only,omitempty"`
}

type jrecord struct {
	On       Date             `json:"on"`
	Type     RecordType       `json:"type"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency string           `json:"currency,omitempty"`
	Quantity *Quantity        `json:"quantity,omitempty"`
}

// DecodeAsset parses one asset's JSONL stream. filename is for error
// messages only.
func DecodeAsset(filename string, r io.Reader) (*Asset, error) {
	scanner := bufio.NewScanner(r)
	var a *Asset
	i := 0
	for scanner.Scan() {
		i++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" {
			continue
		}
		if a == nil {
			var jd jdefinition
			if err := json.Unmarshal([]byte(txt), &jd); err != nil {
				return nil, fmt.Errorf("parse error %s:%v: not a correct json: %w", filename, i, err)
			}
			a = &Asset{
				Name:       jd.Name,
				Kind:       jd.Kind,
				Currency:   jd.Currency,
				Symbol:     jd.Symbol,
				ManualOnly: jd.ManualOnly,
			}
			if err := a.Validate(); err != nil {
				return nil, fmt.Errorf("parse error %s:%v: %w", filename, i, err)
			}
			continue
		}
		var jr jrecord
		if err := json.Unmarshal([]byte(txt), &jr); err != nil {
			return nil, fmt.Errorf("parse error %s:%v: not a correct json: %w", filename, i, err)
		}
		cur := jr.Currency
		if cur == "" {
			cur = a.Currency
		}
		rec := Record{On: jr.On, Type: jr.Type}
		if jr.Amount != nil {
			rec.Amount = M(*jr.Amount, cur)
		} else {
			rec.Amount = M(0, cur)
		}
		if jr.Quantity != nil {
			rec.Quantity = *jr.Quantity
		}
		if err := a.AddRecord(rec); err != nil {
			return nil, fmt.Errorf("parse error %s:%v: %w", filename, i, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse error %s: %w", filename, err)
	}
	if a == nil {
		return nil, fmt.Errorf("parse error %s: missing the asset definition line", filename)
	}
	return a, nil
}

// EncodeAsset writes the asset as JSONL, definition line first.
func EncodeAsset(w io.Writer, a *Asset) error {
	bw := bufio.NewWriter(w)
	def := jdefinition{
		Name:       a.Name,
		Kind:       a.Kind,
		Currency:   a.Currency,
		Symbol:     a.Symbol,
		ManualOnly: a.ManualOnly,
	}
	if err := writeJSONLine(bw, def); err != nil {
		return err
	}
	for _, r := range a.Records() {
		jr := jrecord{On: r.On, Type: r.Type}
		switch r.Type {
		case RecordBuy, RecordSell:
			q := r.Quantity
			jr.Quantity = &q
		default:
			amount := r.Amount.Decimal()
			jr.Amount = &amount
			if c := r.Amount.Currency(); c != a.Currency {
				jr.Currency = c
			}
		}
		if err := writeJSONLine(bw, jr); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveAsset rewrites the asset's file. Like Store.Flush the write is atomic
// with respect to process interruption: the asset is encoded to a temporary
// file in the same folder and then renamed over the previous one, so a
// failure mid-write never truncates the record history.
func SaveAsset(filename string, a *Asset) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist error: cannot create assets folder %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp*")
	if err != nil {
		return fmt.Errorf("persist error: cannot create temp file in %q: %w", dir, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := EncodeAsset(tmp, a); err != nil {
		tmp.Close()
		return fmt.Errorf("persist error: write error on %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist error: cannot close %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("persist error: cannot replace %q: %w", filename, err)
	}
	return nil
}

func writeJSONLine(w *bufio.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// LoadAssets reads every .jsonl asset file in dir, sorted by name so that
// reports are deterministic. A missing folder yields no assets, not an error.
func LoadAssets(dir string) ([]*Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load error: cannot read assets folder %q: %w", dir, err)
	}
	var assets []*Asset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		filename := filepath.Join(dir, e.Name())
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("load error: cannot open %q: %w", filename, err)
		}
		a, err := DecodeAsset(filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}
