/*
store.go - Persistence interface for the transaction history

PURPOSE:
  Defines the interface between the engine and the history store. The
  history is a single ordered list, newest first, owned by one logical
  writer. Every mutation is an atomic read-modify-write of the whole
  list; no finer-grained locking discipline is required.

CONTRACT:
  - Load returns the full history, newest first. A read or parse
    failure degrades to an empty list rather than propagating: the
    engine always receives a valid (possibly empty) history.
  - Append prepends a committed transaction (newest first).
  - DeleteAt removes one record by position, preserving the relative
    order of the rest.
  - ClearMonth removes exactly the records whose derived month key
    equals the target; all others persist unchanged.

IMPLEMENTATIONS:
  - store/sqlite: keyed JSON document in SQLite (production)
  - engine/store: in-memory (testing/dev)

SEE ALSO:
  - usage.go: MonthKey, the month-scoping rule ClearMonth relies on
*/
package engine

import "context"

// HistoryStore persists the committed transaction list.
type HistoryStore interface {
	// Load returns all transactions, newest first. Never fails on
	// corrupt data; degrades to an empty list.
	Load(ctx context.Context) ([]Transaction, error)

	// Append prepends tx to the history.
	Append(ctx context.Context, tx Transaction) error

	// DeleteAt removes the transaction at position index (0 = newest).
	// Returns an IndexError when out of range.
	DeleteAt(ctx context.Context, index int) error

	// ClearMonth removes every transaction whose MonthKey equals
	// monthKey and reports how many were removed.
	ClearMonth(ctx context.Context, monthKey string) (int, error)
}
