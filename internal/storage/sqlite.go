package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SqliteStore struct {
	db          *sql.DB
	compression Compression
}

func NewSqliteStore(path string, compression Compression) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	err = createTable(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteStore{db: db, compression: compression}, nil
}

func createTable(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS sequences (
    name TEXT NOT NULL PRIMARY KEY,
    size INTEGER NOT NULL,
    inserts INTEGER NOT NULL,
    compression INTEGER NOT NULL,
    bits BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL
	);
	`

	_, err := db.Exec(query)
	return err
}

func (s *SqliteStore) SaveSequence(snap *Snapshot) error {
	if want := (snap.Size + 7) / 8; snap.Size <= 0 || len(snap.Bits) != want {
		return fmt.Errorf("%w: %d bits with %d bytes", ErrCorrupt, snap.Size, len(snap.Bits))
	}
	payload, err := compressBits(snap.Bits, s.compression)
	if err != nil {
		return err
	}

	query := `INSERT INTO sequences (name, size, inserts, compression, bits, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			size = excluded.size,
			inserts = excluded.inserts,
			compression = excluded.compression,
			bits = excluded.bits,
			updated_at = excluded.updated_at;
	`

	_, err = s.db.Exec(query, snap.Name, snap.Size, int64(snap.Inserts), int(s.compression), payload, snap.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var inserts int64
	var compression int
	var payload []byte

	err := row.Scan(
		&snap.Name,
		&snap.Size,
		&inserts,
		&compression,
		&payload,
		&snap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	snap.Inserts = uint64(inserts)
	snap.Bits, err = decompressBits(payload, Compression(compression))
	if err != nil {
		return nil, err
	}
	if snap.Size <= 0 || len(snap.Bits) != (snap.Size+7)/8 {
		return nil, fmt.Errorf("%w: %d bits with %d bytes", ErrCorrupt, snap.Size, len(snap.Bits))
	}
	return &snap, nil
}

func (s *SqliteStore) GetSequence(name string) (*Snapshot, error) {
	query := `SELECT name, size, inserts, compression, bits, updated_at FROM sequences WHERE name = ?;`
	snap, err := scanSnapshot(s.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return snap, err
}

func (s *SqliteStore) DeleteSequence(name string) error {
	query := `DELETE FROM sequences WHERE name = ?;`
	_, err := s.db.Exec(query, name)
	return err
}

func (s *SqliteStore) ListSequences() ([]*Snapshot, error) {
	var snaps []*Snapshot

	query := `SELECT name, size, inserts, compression, bits, updated_at FROM sequences ORDER BY name;`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
