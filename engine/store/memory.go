// Package store provides HistoryStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/swipewise/cashback-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu  sync.RWMutex
	txs []engine.Transaction
}

func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the history, newest first.
func (m *Memory) Load(_ context.Context) ([]engine.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.Transaction, len(m.txs))
	copy(out, m.txs)
	return out, nil
}

// Append prepends tx (newest first).
func (m *Memory) Append(_ context.Context, tx engine.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txs = append([]engine.Transaction{tx}, m.txs...)
	return nil
}

// DeleteAt removes the transaction at position index.
func (m *Memory) DeleteAt(_ context.Context, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.txs) {
		return &engine.IndexError{Index: index, Len: len(m.txs)}
	}
	m.txs = append(m.txs[:index], m.txs[index+1:]...)
	return nil
}

// ClearMonth removes every transaction in the given month.
func (m *Memory) ClearMonth(_ context.Context, monthKey string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.txs[:0:0]
	removed := 0
	for _, t := range m.txs {
		if monthKey != "" && engine.MonthKey(t.Date) == monthKey {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.txs = kept
	return removed, nil
}
