/*
Package sqlite provides a SQLite-backed implementation of the history store.

PURPOSE:
  Persists the committed transaction history. The history is a single
  ordered list owned by one logical writer, so it is stored the way
  the original kept it: one JSON document under one key, rewritten
  wholesale on every mutation. SQLite gives us durability and atomic
  read-modify-write without inventing a relational schema the access
  pattern never needs.

KEY TABLE:
  documents: key -> JSON value (the history lives under "history_v1")

DEGRADATION:
  Load never fails on corrupt data. A missing row, unparseable JSON
  document, or unparseable record degrades to an empty (or shorter)
  list - the engine must always receive a valid history. This matches
  the estimation-tool posture: history drives cap estimates, it is not
  a system of record.

CONCURRENCY:
  A mutex serializes mutations; each one is a single SQL transaction
  around read-modify-write of the whole document.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/cashback.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine/store.go: Interface definition and contract
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/swipewise/cashback-engine/engine"
)

const historyKey = "history_v1"

// Store implements engine.HistoryStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// txRecord is the stored shape of one transaction. Field names match
// the external rule/transaction vocabulary (rule_id, est_reward, ...).
type txRecord struct {
	Date      string          `json:"date"`
	Merchant  string          `json:"merchant"`
	Region    string          `json:"region"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	LinePay   bool            `json:"linepay"`
	RuleID    string          `json:"rule_id,omitempty"`
	Card      string          `json:"card,omitempty"`
	RuleName  string          `json:"rule_name,omitempty"`
	EstReward decimal.Decimal `json:"est_reward"`
}

func toRecord(t engine.Transaction) txRecord {
	return txRecord{
		Date:      t.Date,
		Merchant:  t.Merchant,
		Region:    t.Region,
		Category:  t.Category,
		Amount:    t.Amount,
		LinePay:   t.LinePay,
		RuleID:    string(t.RuleID),
		Card:      t.Card,
		RuleName:  t.RuleName,
		EstReward: t.EstReward,
	}
}

func fromRecord(r txRecord) engine.Transaction {
	return engine.Transaction{
		Date:      r.Date,
		Merchant:  r.Merchant,
		Region:    r.Region,
		Category:  r.Category,
		Amount:    r.Amount,
		LinePay:   r.LinePay,
		RuleID:    engine.RuleID(r.RuleID),
		Card:      r.Card,
		RuleName:  r.RuleName,
		EstReward: r.EstReward,
	}
}

// decodeHistory parses the stored document leniently: a document that
// is not a JSON array yields an empty history, and individual records
// that fail to parse are dropped rather than poisoning the rest.
func decodeHistory(raw string) []engine.Transaction {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	var txs []engine.Transaction
	for _, item := range items {
		var rec txRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		txs = append(txs, fromRecord(rec))
	}
	return txs
}

func encodeHistory(txs []engine.Transaction) (string, error) {
	recs := make([]txRecord, len(txs))
	for i, t := range txs {
		recs[i] = toRecord(t)
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// =============================================================================
// HISTORY STORE
// =============================================================================

// Load returns the full history, newest first. Corrupt or missing
// data degrades to an empty list.
func (s *Store) Load(ctx context.Context) ([]engine.Transaction, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM documents WHERE key = ?`, historyKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return decodeHistory(raw), nil
}

// Append prepends tx to the stored history.
func (s *Store) Append(ctx context.Context, tx engine.Transaction) error {
	return s.mutate(ctx, func(txs []engine.Transaction) ([]engine.Transaction, error) {
		return append([]engine.Transaction{tx}, txs...), nil
	})
}

// DeleteAt removes the transaction at position index (0 = newest).
func (s *Store) DeleteAt(ctx context.Context, index int) error {
	return s.mutate(ctx, func(txs []engine.Transaction) ([]engine.Transaction, error) {
		if index < 0 || index >= len(txs) {
			return nil, &engine.IndexError{Index: index, Len: len(txs)}
		}
		return append(txs[:index], txs[index+1:]...), nil
	})
}

// ClearMonth removes every transaction whose month key equals monthKey.
func (s *Store) ClearMonth(ctx context.Context, monthKey string) (int, error) {
	removed := 0
	err := s.mutate(ctx, func(txs []engine.Transaction) ([]engine.Transaction, error) {
		kept := txs[:0:0]
		for _, t := range txs {
			if monthKey != "" && engine.MonthKey(t.Date) == monthKey {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// mutate runs fn over the current history and writes the result back,
// all inside one SQL transaction.
func (s *Store) mutate(ctx context.Context, fn func([]engine.Transaction) ([]engine.Transaction, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	var raw string
	err = dbTx.QueryRowContext(ctx,
		`SELECT value FROM documents WHERE key = ?`, historyKey).Scan(&raw)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read history: %w", err)
	}

	txs := decodeHistory(raw)
	next, err := fn(txs)
	if err != nil {
		return err
	}

	encoded, err := encodeHistory(next)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		historyKey, encoded, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	return dbTx.Commit()
}
