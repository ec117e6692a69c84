// Package profit aggregates personal financial holdings (bank accounts and
// tradable investments recorded in local human-readable files) and computes
// historical valuations, returns, payouts and fees over time, in a reporting
// currency of the user's choosing.
//
// The core functionalities include:
//   - Market Data Store: a per-symbol, human-inspectable price cache with
//     idempotent merge, conflict detection and atomic flush.
//   - Data Completion: filling the gaps between a required timeline and the
//     cached history from an ordered chain of providers, with manual entry
//     and last-known-value carry-forward as configurable fallbacks.
//   - Currency Conversion: exchange-rate series maintained through the same
//     cache and completion machinery, keyed by synthetic pair symbols.
//   - Valuation: a pure, replayable fold over immutable asset records and
//     completed price series, producing per-asset and per-group series of
//     value, return, payouts and fees. Days without data stay explicitly
//     unavailable and are excluded from aggregates rather than zeroed.
//
// This package serves as the foundational logic for the `pft` command-line
// tool.
package profit
