package profit

import (
	"errors"
	"math"
	"testing"
)

func testAccount(t *testing.T, currency string) *Asset {
	t.Helper()
	a := &Asset{Name: "checking", Kind: Account, Currency: currency}
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}
	return a
}

func addRecord(t *testing.T, a *Asset, r Record) {
	t.Helper()
	if err := a.AddRecord(r); err != nil {
		t.Fatal(err)
	}
}

func testValuer(t *testing.T, st *Store) *Valuer {
	t.Helper()
	completer := &Completer{Store: st, CarryForward: true}
	return &Valuer{
		Completer:         completer,
		Rates:             &Rates{Completer: completer},
		ReportingCurrency: "EUR",
		ReturnMode:        ReturnSimple,
	}
}

func TestAccountValueSeries(t *testing.T) {
	a := testAccount(t, "EUR")
	addRecord(t, a, Record{On: day("2023-01-01"), Type: RecordBalance, Amount: M(1000, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-05"), Type: RecordWithdraw, Amount: M(200, "EUR")})

	v := testValuer(t, NewStore(t.TempDir()))
	vs, err := v.ValueSeries(a, timeline(t, "2023-01-01", "2023-01-10"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		on   string
		want float64
	}{
		{"2023-01-04", 1000}, // before the withdrawal
		{"2023-01-05", 800},  // the withdrawal applies on its day
		{"2023-01-10", 800},  // and stays
	}
	for _, tt := range tests {
		got, ok := vs.Price(day(tt.on))
		if !ok || got != tt.want {
			t.Errorf("value on %s = %v,%v want %v,true", tt.on, got, ok, tt.want)
		}
	}
}

func TestInvestmentValueSeries(t *testing.T) {
	st := NewStore(t.TempDir())
	if err := st.Merge("ACME",
		Point(day("2023-01-02"), 100),
		Point(day("2023-01-03"), 110),
	); err != nil {
		t.Fatal(err)
	}

	a := &Asset{Name: "acme-shares", Kind: Investment, Currency: "EUR", Symbol: "ACME"}
	addRecord(t, a, Record{On: day("2023-01-02"), Type: RecordBuy, Quantity: Q(5)})
	addRecord(t, a, Record{On: day("2023-01-04"), Type: RecordSell, Quantity: Q(2)})

	v := testValuer(t, st)
	vs, err := v.ValueSeries(a, timeline(t, "2023-01-01", "2023-01-04"))
	if err != nil {
		t.Fatal(err)
	}

	// Nothing held on the 1st: the value is a known zero even though no
	// price exists for that day.
	if got, ok := vs.Price(day("2023-01-01")); !ok || got != 0 {
		t.Errorf("empty holding on 01-01 = %v,%v want 0,true", got, ok)
	}
	if got, ok := vs.Price(day("2023-01-02")); !ok || got != 500 {
		t.Errorf("value on 01-02 = %v,%v want 500,true", got, ok)
	}
	if got, ok := vs.Price(day("2023-01-03")); !ok || got != 550 {
		t.Errorf("value on 01-03 = %v,%v want 550,true", got, ok)
	}
	// The 4th has no price: carried forward from the 3rd, 3 shares left.
	if got, ok := vs.Price(day("2023-01-04")); !ok || got != 330 {
		t.Errorf("value on 01-04 = %v,%v want 330,true", got, ok)
	}
}

func TestInvestmentValueUnavailableNotZero(t *testing.T) {
	st := NewStore(t.TempDir())
	a := &Asset{Name: "acme-shares", Kind: Investment, Currency: "EUR", Symbol: "ACME"}
	addRecord(t, a, Record{On: day("2023-01-02"), Type: RecordBuy, Quantity: Q(5)})

	completer := &Completer{Store: st, CarryForward: false}
	v := &Valuer{Completer: completer, Rates: &Rates{Completer: completer}, ReportingCurrency: "EUR"}
	vs, err := v.ValueSeries(a, timeline(t, "2023-01-02", "2023-01-02"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := vs.Price(day("2023-01-02")); ok {
		t.Error("a held position without a price must be unavailable, never zero")
	}
}

func TestPayoutAndFeeSeries(t *testing.T) {
	a := testAccount(t, "EUR")
	addRecord(t, a, Record{On: day("2023-01-01"), Type: RecordBalance, Amount: M(1000, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-03"), Type: RecordPayout, Amount: M(12.5, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-03"), Type: RecordPayout, Amount: M(7.5, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-06"), Type: RecordFee, Amount: M(4, "EUR")})

	v := testValuer(t, NewStore(t.TempDir()))
	tl := timeline(t, "2023-01-01", "2023-01-10")

	payouts, err := v.PayoutSeries(a, tl)
	if err != nil {
		t.Fatal(err)
	}
	if payouts.Len() != 1 {
		t.Fatalf("got %d payout days, want 1 (same-day payouts accumulate)", payouts.Len())
	}
	if got, _ := payouts.Price(day("2023-01-03")); got != 20 {
		t.Errorf("payouts on 01-03 = %v, want 20", got)
	}

	fees, err := v.FeeSeries(a, tl)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := fees.Price(day("2023-01-06")); got != -4 {
		t.Errorf("fees on 01-06 = %v, want -4 (fees are negative points)", got)
	}
}

func TestReturnSimple(t *testing.T) {
	a := testAccount(t, "EUR")
	addRecord(t, a, Record{On: day("2023-01-01"), Type: RecordBalance, Amount: M(1000, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-05"), Type: RecordDeposit, Amount: M(500, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-08"), Type: RecordBalance, Amount: M(1600, "EUR")})

	v := testValuer(t, NewStore(t.TempDir()))
	got, err := v.Return(a, timeline(t, "2023-01-01", "2023-01-10"))
	if err != nil {
		t.Fatal(err)
	}
	// (1600 - 1000 - 500) / 1000: the deposit is not performance.
	if math.Abs(got-0.1) > 1e-9 {
		t.Errorf("simple return = %v, want 0.1", got)
	}
}

func TestReturnDietz(t *testing.T) {
	a := testAccount(t, "EUR")
	addRecord(t, a, Record{On: day("2023-01-01"), Type: RecordBalance, Amount: M(1000, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-05"), Type: RecordDeposit, Amount: M(500, "EUR")})
	addRecord(t, a, Record{On: day("2023-01-08"), Type: RecordBalance, Amount: M(1600, "EUR")})

	v := testValuer(t, NewStore(t.TempDir()))
	v.ReturnMode = ReturnDietz
	got, err := v.Return(a, timeline(t, "2023-01-01", "2023-01-10"))
	if err != nil {
		t.Fatal(err)
	}
	// The deposit sat in the account 6 of 10 days: denominator 1000 + 0.6*500.
	want := 100.0 / 1300.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("dietz return = %v, want %v", got, want)
	}
}

func TestReturnNoData(t *testing.T) {
	st := NewStore(t.TempDir())
	a := &Asset{Name: "acme-shares", Kind: Investment, Currency: "EUR", Symbol: "ACME"}
	addRecord(t, a, Record{On: day("2023-01-02"), Type: RecordBuy, Quantity: Q(5)})

	v := testValuer(t, st)
	_, err := v.Return(a, timeline(t, "2023-01-02", "2023-01-05"))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("got %v, want ErrNoData when no price exists at all", err)
	}
}

func TestAggregateSeries(t *testing.T) {
	tl := timeline(t, "2023-01-01", "2023-01-03")

	a := NewSeries("a")
	if err := a.Merge(
		Point(day("2023-01-01"), 10),
		Unavailable(day("2023-01-02")),
		Unavailable(day("2023-01-03")),
	); err != nil {
		t.Fatal(err)
	}
	b := NewSeries("b")
	if err := b.Merge(
		Point(day("2023-01-01"), 5),
		Point(day("2023-01-02"), 6),
		Unavailable(day("2023-01-03")),
	); err != nil {
		t.Fatal(err)
	}

	got := AggregateSeries("total", tl, a, b)
	if v, ok := got.Price(day("2023-01-01")); !ok || v != 15 {
		t.Errorf("01-01 = %v,%v want 15,true", v, ok)
	}
	// One constituent unavailable: excluded, not zeroed.
	if v, ok := got.Price(day("2023-01-02")); !ok || v != 6 {
		t.Errorf("01-02 = %v,%v want 6,true", v, ok)
	}
	// No constituent defined: the aggregate day is unavailable.
	if _, ok := got.Price(day("2023-01-03")); ok {
		t.Error("01-03 must be unavailable when no constituent has a value")
	}

	// The rule composes: aggregating aggregates behaves the same.
	twice := AggregateSeries("outer", tl, got, NewSeries("empty"))
	if v, ok := twice.Price(day("2023-01-02")); !ok || v != 6 {
		t.Errorf("two-stage 01-02 = %v,%v want 6,true", v, ok)
	}
	if _, ok := twice.Price(day("2023-01-03")); ok {
		t.Error("two-stage 01-03 must stay unavailable")
	}
}

func TestGroupMembers(t *testing.T) {
	assets := []*Asset{
		{Name: "a", Kind: Account, Currency: "EUR"},
		{Name: "b", Kind: Account, Currency: "EUR"},
	}
	g := Group{Name: "g", Assets: []string{"b", "missing", "a"}}
	members := g.Members(assets)
	if len(members) != 2 || members[0].Name != "b" || members[1].Name != "a" {
		t.Errorf("got %v, want [b a] in group order, unknowns skipped", members)
	}
}
