package profit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAssetValidate(t *testing.T) {
	tests := []struct {
		name  string
		asset Asset
		ok    bool
	}{
		{"account", Asset{Name: "checking", Kind: Account, Currency: "EUR"}, true},
		{"investment", Asset{Name: "etf", Kind: Investment, Currency: "USD", Symbol: "VT.US"}, true},
		{"no name", Asset{Kind: Account, Currency: "EUR"}, false},
		{"bad kind", Asset{Name: "x", Kind: "wallet", Currency: "EUR"}, false},
		{"bad currency", Asset{Name: "x", Kind: Account, Currency: "MOON"}, false},
		{"investment without symbol", Asset{Name: "x", Kind: Investment, Currency: "EUR"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestAssetRecordRules(t *testing.T) {
	account := &Asset{Name: "checking", Kind: Account, Currency: "EUR"}
	if err := account.AddRecord(Record{On: day("2023-01-02"), Type: RecordBuy, Quantity: Q(1)}); err == nil {
		t.Error("an account must reject trade records")
	}
	investment := &Asset{Name: "etf", Kind: Investment, Currency: "EUR", Symbol: "X"}
	if err := investment.AddRecord(Record{On: day("2023-01-02"), Type: RecordDeposit, Amount: M(1, "EUR")}); err == nil {
		t.Error("an investment must reject cash records")
	}
	// Payouts and fees apply to both kinds.
	if err := account.AddRecord(Record{On: day("2023-01-02"), Type: RecordPayout, Amount: M(1, "EUR")}); err != nil {
		t.Errorf("account payout: %v", err)
	}
	if err := investment.AddRecord(Record{On: day("2023-01-02"), Type: RecordFee, Amount: M(1, "EUR")}); err != nil {
		t.Errorf("investment fee: %v", err)
	}
}

func TestAccountRejectsForeignCurrency(t *testing.T) {
	a := &Asset{Name: "checking", Kind: Account, Currency: "EUR"}
	if err := a.AddRecord(Record{On: day("2023-01-01"), Type: RecordDeposit, Amount: M(500, "USD")}); err == nil {
		t.Error("a foreign-currency deposit on an account must be rejected")
	}
	if b := a.BalanceAt(day("2023-01-01")); !b.Equal(M(0, "EUR")) {
		t.Errorf("rejected record leaked into the balance: %s", b)
	}

	// The decoder enforces the same rule, so a hand-edited file cannot
	// smuggle in a record the balance replay cannot sum.
	input := `{"name":"checking","kind":"account","currency":"EUR"}
{"on":"2023-01-01","type":"deposit","amount":500,"currency":"USD"}
`
	if _, err := DecodeAsset("test.jsonl", strings.NewReader(input)); err == nil {
		t.Error("expected a parse error for the foreign-currency account record")
	}

	// Investment payouts and fees may carry a foreign currency.
	inv := &Asset{Name: "etf", Kind: Investment, Currency: "EUR", Symbol: "X"}
	if err := inv.AddRecord(Record{On: day("2023-01-01"), Type: RecordPayout, Amount: M(12.5, "USD")}); err != nil {
		t.Errorf("investment foreign payout: %v", err)
	}
}

func TestAssetRecordsStaySorted(t *testing.T) {
	a := &Asset{Name: "checking", Kind: Account, Currency: "EUR"}
	for _, on := range []string{"2023-03-01", "2023-01-01", "2023-02-01"} {
		if err := a.AddRecord(Record{On: day(on), Type: RecordDeposit, Amount: M(1, "EUR")}); err != nil {
			t.Fatal(err)
		}
	}
	records := a.Records()
	for i := 1; i < len(records); i++ {
		if records[i].On.Before(records[i-1].On) {
			t.Fatalf("records out of order: %s before %s", records[i].On, records[i-1].On)
		}
	}
	if first, _ := a.FirstRecord(); first != day("2023-01-01") {
		t.Errorf("FirstRecord() = %s, want 2023-01-01", first)
	}
}

func TestQuantityAndBalanceReplay(t *testing.T) {
	inv := &Asset{Name: "etf", Kind: Investment, Currency: "EUR", Symbol: "X"}
	addRecord(t, inv, Record{On: day("2023-01-02"), Type: RecordBuy, Quantity: Q(10)})
	addRecord(t, inv, Record{On: day("2023-01-05"), Type: RecordSell, Quantity: Q(4)})

	if q := inv.QuantityAt(day("2023-01-01")); !q.IsZero() {
		t.Errorf("quantity before any record = %s, want 0", q)
	}
	if q := inv.QuantityAt(day("2023-01-03")); !q.Equal(Q(10)) {
		t.Errorf("quantity on 01-03 = %s, want 10", q)
	}
	if q := inv.QuantityAt(day("2023-01-05")); !q.Equal(Q(6)) {
		t.Errorf("quantity on 01-05 = %s, want 6", q)
	}

	acc := &Asset{Name: "checking", Kind: Account, Currency: "EUR"}
	addRecord(t, acc, Record{On: day("2023-01-01"), Type: RecordBalance, Amount: M(100, "EUR")})
	addRecord(t, acc, Record{On: day("2023-01-02"), Type: RecordDeposit, Amount: M(50, "EUR")})
	addRecord(t, acc, Record{On: day("2023-01-03"), Type: RecordFee, Amount: M(10, "EUR")})
	addRecord(t, acc, Record{On: day("2023-01-04"), Type: RecordBalance, Amount: M(1000, "EUR")})

	if b := acc.BalanceAt(day("2023-01-03")); !b.Equal(M(140, "EUR")) {
		t.Errorf("balance on 01-03 = %s, want 140", b)
	}
	// A balance statement resets whatever the replay said.
	if b := acc.BalanceAt(day("2023-01-04")); !b.Equal(M(1000, "EUR")) {
		t.Errorf("balance on 01-04 = %s, want 1000", b)
	}
}

func TestDecodeAsset(t *testing.T) {
	input := `{"name":"broker-etf","kind":"investment","currency":"USD","symbol":"VT.US"}
{"on":"2023-01-02","type":"buy","quantity":10}

{"on":"2023-03-01","type":"payout","amount":12.5}
{"on":"2023-06-30","type":"sell","quantity":4}
`
	a, err := DecodeAsset("test.jsonl", strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "broker-etf" || a.Kind != Investment || a.Symbol != "VT.US" {
		t.Errorf("decoded definition %+v", a)
	}
	if len(a.Records()) != 3 {
		t.Fatalf("got %d records, want 3", len(a.Records()))
	}
	if q := a.QuantityAt(day("2023-12-31")); !q.Equal(Q(6)) {
		t.Errorf("final quantity = %s, want 6", q)
	}
	// The payout amount defaults to the asset's currency.
	if got := a.Records()[1].Amount; !got.Equal(M(12.5, "USD")) {
		t.Errorf("payout = %s, want 12.50 USD", got)
	}
}

func TestDecodeAssetErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad definition", `{"name":"x","kind":"wallet","currency":"EUR"}`},
		{"record before definition", `{"on":"2023-01-02","type":"buy","quantity":1}`},
		{"bad record type", "{\"name\":\"x\",\"kind\":\"account\",\"currency\":\"EUR\"}\n{\"on\":\"2023-01-02\",\"type\":\"magic\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAsset("test.jsonl", strings.NewReader(tt.input)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestEncodeAssetRoundTrip(t *testing.T) {
	a := &Asset{Name: "broker-etf", Kind: Investment, Currency: "EUR", Symbol: "VT.US"}
	addRecord(t, a, Record{On: day("2023-01-01"), Type: RecordBuy, Quantity: Q(10)})
	addRecord(t, a, Record{On: day("2023-01-05"), Type: RecordFee, Amount: M(2, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-06"), Type: RecordPayout, Amount: M(3.5, "USD")})

	var b strings.Builder
	if err := EncodeAsset(&b, a); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeAsset("roundtrip.jsonl", strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("decoding our own encoding failed: %v\n%s", err, b.String())
	}
	if len(got.Records()) != 3 {
		t.Fatalf("got %d records back, want 3", len(got.Records()))
	}
	// The foreign-currency payout keeps its currency.
	if amount := got.Records()[2].Amount; !amount.Equal(M(3.5, "USD")) {
		t.Errorf("payout came back as %s, want 3.50 USD", amount)
	}
}

func TestEncodeAssetKeepsExactAmounts(t *testing.T) {
	exact := decimal.RequireFromString("12345.678901234567890123456789")
	a := &Asset{Name: "etf", Kind: Investment, Currency: "EUR", Symbol: "X"}
	addRecord(t, a, Record{On: day("2023-01-01"), Type: RecordPayout, Amount: M(exact, "EUR")})

	var b strings.Builder
	if err := EncodeAsset(&b, a); err != nil {
		t.Fatal(err)
	}
	// The exact amount goes to the file as-is, not rounded through float64.
	if !strings.Contains(b.String(), exact.String()) {
		t.Errorf("encoding lost precision:\n%swant the amount %s", b.String(), exact)
	}
	got, err := DecodeAsset("exact.jsonl", strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if amount := got.Records()[0].Amount; !amount.Equal(M(exact, "EUR")) {
		t.Errorf("amount came back as %s, want %s", amount.Decimal(), exact)
	}
}

func TestSaveAssetAtomicRewrite(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "checking.jsonl")
	a := &Asset{Name: "checking", Kind: Account, Currency: "EUR"}
	addRecord(t, a, Record{On: day("2023-01-01"), Type: RecordBalance, Amount: M(1000, "EUR")})
	if err := SaveAsset(filename, a); err != nil {
		t.Fatal(err)
	}

	// A second save replaces the file, it never truncates then fails.
	addRecord(t, a, Record{On: day("2023-01-02"), Type: RecordDeposit, Amount: M(50, "EUR")})
	if err := SaveAsset(filename, a); err != nil {
		t.Fatal(err)
	}

	assets, err := LoadAssets(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 || len(assets[0].Records()) != 2 {
		t.Fatalf("reloaded %d assets, want 1 asset with 2 records", len(assets))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file %q left behind after save", e.Name())
		}
	}
}
