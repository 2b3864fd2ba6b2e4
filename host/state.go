// Package host provides in-process implementations of the primitives the
// token state machine runs against: a key-value state store, a fungible
// ledger, a native-currency bank, and a node that serializes calls and
// stamps them with a clock and transaction ids.
package host

import (
	"sync"

	"nova_token/contract"
)

// MemState is a map-backed contract.State. Safe for concurrent use.
type MemState struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemState returns an empty state store.
func NewMemState() *MemState {
	return &MemState{data: make(map[string]string)}
}

func (s *MemState) Set(key, value string) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

func (s *MemState) Get(key string) *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil
	}
	return &v
}

func (s *MemState) Delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Len reports the number of stored keys.
func (s *MemState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ contract.State = (*MemState)(nil)
