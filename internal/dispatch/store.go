package dispatch

import (
	"sync"
)

// Store holds the authoritative in-memory ledger. Records are keyed by a
// synthetic RecordID with a separate ordered id list, so derived views and
// selections never depend on slice positions surviving a reload.
type Store struct {
	mu      sync.RWMutex
	order   []RecordID
	records map[RecordID]DispatchRecord
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[RecordID]DispatchRecord)}
}

// Load replaces the full ledger. The feed returns oldest-first; the store
// reverses so the most recently appended rows display first.
func (s *Store) Load(records []DispatchRecord) {
	order := make([]RecordID, 0, len(records))
	byID := make(map[RecordID]DispatchRecord, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		id := NewRecordID()
		order = append(order, id)
		byID[id] = records[i]
	}

	s.mu.Lock()
	s.order = order
	s.records = byID
	s.mu.Unlock()
}

// All returns the ledger in display order.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, Entry{ID: id, Record: s.records[id]})
	}
	return entries
}

// Records returns the ledger records in display order, without identities.
func (s *Store) Records() []DispatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]DispatchRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}
	return records
}

// Get fetches one record by id.
func (s *Store) Get(id RecordID) (DispatchRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Len reports the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Patch applies the mutation to each identified record and reports how many
// were found. Records outside ids keep their exact previous value, and the
// display order is unaffected.
func (s *Store) Patch(ids []RecordID, mutate func(*DispatchRecord)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	patched := 0
	for _, id := range ids {
		rec, ok := s.records[id]
		if !ok {
			continue
		}
		mutate(&rec)
		s.records[id] = rec
		patched++
	}
	return patched
}
