package storage

import (
	"errors"

	bolt "go.etcd.io/bbolt"
)

type BoltStore struct {
	db          *bolt.DB
	compression Compression
}

var sequenceBucket = []byte("sequences")

func NewBoltStore(dbPath string, compression Compression) (*BoltStore, error) {
	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sequenceBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, compression: compression}, nil
}

func (s *BoltStore) SaveSequence(snap *Snapshot) error {
	data, err := encodeSnapshot(snap, s.compression)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(sequenceBucket)
		if bkt == nil {
			return errors.New("missing bucket in DB")
		}
		return bkt.Put([]byte(snap.Name), data)
	})
}

func (s *BoltStore) GetSequence(name string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(sequenceBucket)
		if bkt == nil {
			return nil
		}

		data := bkt.Get([]byte(name))
		if data == nil {
			return nil
		}

		sn, err := decodeSnapshot(data)
		if err != nil {
			return err
		}

		snap = sn
		return nil
	})
	return snap, err
}

func (s *BoltStore) DeleteSequence(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(sequenceBucket)
		if bkt == nil {
			return nil
		}
		return bkt.Delete([]byte(name))
	})
}

func (s *BoltStore) ListSequences() ([]*Snapshot, error) {
	var snaps []*Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(sequenceBucket)
		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(_, v []byte) error {
			sn, err := decodeSnapshot(v)
			if err != nil {
				return err
			}
			snaps = append(snaps, sn)
			return nil
		})
	})
	return snaps, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
