package profit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the local price cache: one persisted, human-inspectable history
// per symbol (currency pairs included, as synthetic symbols).
//
// The store is the only owner of its Series. Mutation goes through Merge,
// which serializes writers per symbol; different symbols may be merged
// concurrently since each history is an independently owned file.
type Store struct {
	dir string

	mu     sync.Mutex // guards the entries map, not the series
	series map[string]*storeEntry
}

type storeEntry struct {
	mu sync.Mutex // one writer at a time per symbol
	s  *Series
}

// NewStore returns a store persisting under dir. The directory is created
// lazily on first flush.
func NewStore(dir string) *Store {
	return &Store{dir: dir, series: make(map[string]*storeEntry)}
}

// Dir returns the store's folder.
func (st *Store) Dir() string { return st.dir }

// filename maps a symbol to its cache file. Symbols may contain exchange
// suffixes like "VT.US"; anything unsafe for a filename is percent-encoded,
// so distinct symbols always map to distinct files.
func (st *Store) filename(symbol string) string {
	var clean strings.Builder
	for _, r := range symbol {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			clean.WriteRune(r)
		default:
			for _, b := range []byte(string(r)) {
				fmt.Fprintf(&clean, "%%%02X", b)
			}
		}
	}
	return filepath.Join(st.dir, clean.String()+".jsonl")
}

func (st *Store) entry(symbol string) *storeEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.series[symbol]
	if !ok {
		e = &storeEntry{}
		st.series[symbol] = e
	}
	return e
}

// Load returns the series for symbol, reading the persisted history on first
// access. A symbol with no history yet yields an empty series, not an error.
func (st *Store) Load(symbol string) (*Series, error) {
	e := st.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := st.load(e, symbol); err != nil {
		return nil, err
	}
	return e.s, nil
}

// load reads the series from disk into e if not done already.
// The caller must hold e.mu.
func (st *Store) load(e *storeEntry, symbol string) error {
	if e.s != nil {
		return nil
	}
	s, err := decodeSeriesFile(st.filename(symbol), symbol)
	if err != nil {
		return err
	}
	e.s = s
	return nil
}

// Merge idempotently integrates points into the symbol's series, enforcing
// the conflict policy documented on Series.Merge. The merge is applied
// in-memory; call Flush to persist.
func (st *Store) Merge(symbol string, points ...PricePoint) error {
	e := st.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := st.load(e, symbol); err != nil {
		return err
	}
	return e.s.Merge(points...)
}

// Flush persists the symbol's in-memory series. The write is atomic with
// respect to process interruption: the series is written to a temporary file
// in the same folder and then renamed over the previous one, so a crash
// mid-write never corrupts the on-disk history.
func (st *Store) Flush(symbol string) error {
	e := st.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s == nil || e.s.Len() == 0 {
		return nil // nothing to persist
	}
	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return fmt.Errorf("persist error: cannot create store folder %q: %w", st.dir, err)
	}
	filename := st.filename(symbol)
	tmp, err := os.CreateTemp(st.dir, filepath.Base(filename)+".tmp*")
	if err != nil {
		return fmt.Errorf("persist error: cannot create temp file in %q: %w", st.dir, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := encodeSeries(tmp, e.s); err != nil {
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

// Gaps returns the maximal contiguous ranges of tl holding no real price for
// symbol. Days explicitly marked unavailable count as gaps.
func (st *Store) Gaps(symbol string, tl Timeline) ([]Gap, error) {
	s, err := st.Load(symbol)
	if err != nil {
		return nil, err
	}
	var gaps []Gap
	for _, r := range missingRanges(s, tl) {
		gaps = append(gaps, Gap{Symbol: symbol, Range: r})
	}
	return gaps, nil
}

// FlushAll persists every series currently loaded.
func (st *Store) FlushAll() error {
	st.mu.Lock()
	symbols := make([]string, 0, len(st.series))
	for symbol := range st.series {
		symbols = append(symbols, symbol)
	}
	st.mu.Unlock()

	for _, symbol := range symbols {
		if err := st.Flush(symbol); err != nil {
			return err
		}
	}
	return nil
}
