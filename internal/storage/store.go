package storage

//go:generate mockgen -source store.go -destination store_mocks.go -package storage

import (
	"time"
)

// Snapshot is the persisted state of one named bit sequence.
type Snapshot struct {
	Name      string
	Size      int
	Bits      []byte
	Inserts   uint64
	UpdatedAt time.Time
}

// SequenceStore persists snapshots by name. GetSequence returns nil, nil
// when no snapshot exists.
type SequenceStore interface {
	SaveSequence(snap *Snapshot) error
	GetSequence(name string) (*Snapshot, error)
	DeleteSequence(name string) error
	ListSequences() ([]*Snapshot, error)
	Close() error
}
