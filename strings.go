package spandex

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// Hash returns the 64-bit hash used for string interning: xxhash64 over
// the UTF-8 bytes, unseeded. It is a pure function, so the same string
// hashes identically in every table instance and in every process.
func Hash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// StringTable is a bidirectional string↔hash registry. Entries are added
// lazily on first encounter and never removed; the table lives as long as
// its owning Vocab.
//
// Intern is safe to call from multiple goroutines; Resolve takes only a
// read lock and never mutates.
type StringTable struct {
	mu     sync.RWMutex
	byHash map[uint64]string
}

// NewStringTable creates an empty table.
func NewStringTable() *StringTable {
	return &StringTable{byHash: make(map[uint64]string)}
}

// Intern registers s if it is new and returns its hash. Idempotent;
// never fails.
func (t *StringTable) Intern(s string) uint64 {
	h := Hash(s)

	// Fast path: already registered.
	t.mu.RLock()
	_, ok := t.byHash[h]
	t.mu.RUnlock()
	if ok {
		return h
	}

	t.mu.Lock()
	if _, ok := t.byHash[h]; !ok {
		t.byHash[h] = s
	}
	t.mu.Unlock()
	return h
}

// Resolve returns the string registered for h. It fails with
// ErrUnknownHash if h was never interned in this table instance.
func (t *StringTable) Resolve(h uint64) (string, error) {
	t.mu.RLock()
	s, ok := t.byHash[h]
	t.mu.RUnlock()
	if !ok {
		return "", errors.Wrapf(ErrUnknownHash, "hash %#x", h)
	}
	return s, nil
}

// Contains reports whether h is registered in this table.
func (t *StringTable) Contains(h uint64) bool {
	t.mu.RLock()
	_, ok := t.byHash[h]
	t.mu.RUnlock()
	return ok
}

// Len returns the number of registered strings.
func (t *StringTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byHash)
}
