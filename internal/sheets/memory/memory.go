// Package memory is an in-process ledger mirror for tests and for running
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"obra/internal/core"
)

type Store struct {
	mu   sync.Mutex
	rows map[int64]core.Transaction
}

func New() *Store {
	return &Store{rows: make(map[int64]core.Transaction)}
}

// Upsert stores the transaction and returns a synthetic row reference.
func (s *Store) Upsert(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.ID] = t
	return fmt.Sprintf("mem:%d", t.ID), nil
}

// Delete removes the transaction row. Unknown ids are ignored.
func (s *Store) Delete(_ context.Context, transactionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, transactionID)
	return nil
}

// Get returns the mirrored transaction, for assertions in tests.
func (s *Store) Get(transactionID int64) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[transactionID]
	return t, ok
}

// Len reports the number of mirrored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
