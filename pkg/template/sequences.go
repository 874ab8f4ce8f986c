package template

import "sync"

// SequenceStore manages auto-incrementing named sequences for
// {{sequence("name")}} expressions. It is safe for concurrent use.
type SequenceStore struct {
	sequences map[string]int64
	mu        sync.Mutex
}

// NewSequenceStore creates an empty sequence store.
func NewSequenceStore() *SequenceStore {
	return &SequenceStore{sequences: make(map[string]int64)}
}

// Next returns the current value of a sequence and then increments it.
// A sequence seen for the first time starts at start.
func (s *SequenceStore) Next(name string, start int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sequences[name]; !exists {
		s.sequences[name] = start
	}
	val := s.sequences[name]
	s.sequences[name]++
	return val
}

// Reset removes a sequence so it restarts from its start value.
func (s *SequenceStore) Reset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sequences, name)
}
