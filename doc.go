// Package buvette implements a barcode-driven stock manager for an
// association's beverage stand. A scanner emits codes that identify a
// member, a product, or a payment method; the package resolves each
// scan against a catalog, builds up the current order, and turns a
// payment scan into a finalized transaction that decrements stock and
// appends a row to a CSV ledger.
//
// The core pieces are:
//   - Barcode normalization: a fixed character remap correcting the
//     scanner's keyboard-layout mismatch, applied exactly once per
//     scanned value.
//   - Catalog: members, products and payment methods persisted as
//     three JSON files, with backup-and-reset recovery on corruption.
//   - Ledger: an append-only CSV transaction log with range queries,
//     exports and statistics.
//   - Session: the scan state machine, from Idle through
//     MemberSelected to a finalized or cancelled payment.
//
// The package is single-operator by design: one scan is fully
// processed before the next, and only one finalize is ever in flight.
// Two processes pointed at the same data directory race without any
// locking; run one till per data directory.
package buvette
