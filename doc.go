// Package simbooks derives accounting statements from the transaction and
// resource logs of a business simulation game.
//
// The core functionalities include:
//   - Classification: a rule table tags each cash transaction with the
//     statement buckets it contributes to (sales, fees, salaries, ...).
//     Buckets may overlap, a record can count in several sums.
//   - Inventory Costing: a weighted-average replay of each resource's
//     movements, in chronological order, that realizes the cost of goods sold
//     on every sale.
//   - Valuation: a liquidation based valuation allowance for the inventory
//     held, using market VWAP references of the previous financial day and a
//     day keyed price cache.
//   - Statements: the income statement, the cash-flow statement and the
//     valuation delta, each an ordered sequence of Lines ready for display or
//     export.
//
// The package performs no I/O on its own. Records are supplied already parsed
// (see package ingest), prices come from a PriceSource (see package simco) and
// the price cache is persisted through a BlobStore (see package store).
package simbooks
