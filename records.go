package profit

import "fmt"

// RecordType identifies what kind of event a record describes.
type RecordType string

const (
	// RecordBalance sets an account's absolute balance on a day.
	RecordBalance RecordType = "balance"
	// RecordDeposit adds money to an account.
	RecordDeposit RecordType = "deposit"
	// RecordWithdraw removes money from an account.
	RecordWithdraw RecordType = "withdraw"
	// RecordBuy increases an investment's held quantity.
	RecordBuy RecordType = "buy"
	// RecordSell decreases an investment's held quantity.
	RecordSell RecordType = "sell"
	// RecordPayout is income paid out by the asset (dividend, interest).
	// Payouts never change the asset's value series, they form their own.
	RecordPayout RecordType = "payout"
	// RecordFee is a cost charged against the asset, kept in its own series
	// like payouts.
	RecordFee RecordType = "fee"
)

// validRecordTypes is the closed set accepted by the decoder.
var validRecordTypes = map[RecordType]bool{
	RecordBalance:  true,
	RecordDeposit:  true,
	RecordWithdraw: true,
	RecordBuy:      true,
	RecordSell:     true,
	RecordPayout:   true,
	RecordFee:      true,
}

// Record is one dated event in an asset's history: a balance statement, a
// cash movement, a trade, a payout or a fee.
type Record struct {
	On       Date
	Type     RecordType
	Amount   Money    // balance, deposit, withdraw, payout, fee
	Quantity Quantity // buy, sell
}

// Validate checks the record's internal consistency.
func (r Record) Validate() error {
	if r.On.IsZero() {
		return fmt.Errorf("record has no date")
	}
	if !validRecordTypes[r.Type] {
		return fmt.Errorf("unknown record type %q", r.Type)
	}
	switch r.Type {
	case RecordBuy, RecordSell:
		if r.Quantity.IsZero() || r.Quantity.IsNegative() {
			return fmt.Errorf("%s record on %s needs a positive quantity", r.Type, r.On)
		}
	default:
		if r.Amount.IsNegative() {
			return fmt.Errorf("%s record on %s needs a non-negative amount, the type carries the sign", r.Type, r.On)
		}
	}
	return nil
}
