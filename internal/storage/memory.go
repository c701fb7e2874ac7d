package storage

import (
	"sort"
	"sync"
)

// MemoryStore keeps encoded snapshots in a map. Nothing survives Close.
type MemoryStore struct {
	mu          sync.RWMutex
	data        map[string][]byte
	compression Compression
}

func NewMemoryStore(compression Compression) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), compression: compression}
}

func (s *MemoryStore) SaveSequence(snap *Snapshot) error {
	data, err := encodeSnapshot(snap, s.compression)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.Name] = data
	return nil
}

func (s *MemoryStore) GetSequence(name string) (*Snapshot, error) {
	s.mu.RLock()
	data, ok := s.data[name]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeSnapshot(data)
}

func (s *MemoryStore) DeleteSequence(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

func (s *MemoryStore) ListSequences() ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)

	snaps := make([]*Snapshot, 0, len(names))
	for _, name := range names {
		snap, err := decodeSnapshot(s.data[name])
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}
