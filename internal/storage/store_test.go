package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(name string, size int) *Snapshot {
	bits := make([]byte, (size+7)/8)
	for i := range bits {
		if i%7 == 0 {
			bits[i] = byte(i)
		}
	}
	if rem := size % 8; rem != 0 {
		bits[len(bits)-1] &= byte(1<<rem) - 1
	}
	return &Snapshot{
		Name:      name,
		Size:      size,
		Bits:      bits,
		Inserts:   uint64(size / 3),
		UpdatedAt: time.Unix(1700000000, 123456789),
	}
}

func assertSnapshotEqual(t *testing.T, want, got *Snapshot) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Size, got.Size)
	assert.Equal(t, want.Bits, got.Bits)
	assert.Equal(t, want.Inserts, got.Inserts)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated %v != %v", want.UpdatedAt, got.UpdatedAt)
}

// exerciseStore runs the SequenceStore contract against s.
func exerciseStore(t *testing.T, s SequenceStore) {
	t.Helper()

	missing, err := s.GetSequence("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	a := sampleSnapshot("alpha", 1000)
	b := sampleSnapshot("beta", 13)
	require.NoError(t, s.SaveSequence(a))
	require.NoError(t, s.SaveSequence(b))

	got, err := s.GetSequence("alpha")
	require.NoError(t, err)
	assertSnapshotEqual(t, a, got)

	// overwrite keeps a single record
	b.Bits[0] |= 0x01
	b.Inserts++
	require.NoError(t, s.SaveSequence(b))
	got, err = s.GetSequence("beta")
	require.NoError(t, err)
	assertSnapshotEqual(t, b, got)

	all, err := s.ListSequences()
	require.NoError(t, err)
	require.Len(t, all, 2)
	names := []string{all[0].Name, all[1].Name}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)

	require.NoError(t, s.DeleteSequence("alpha"))
	require.NoError(t, s.DeleteSequence("alpha"))
	got, err = s.GetSequence("alpha")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, s.SaveSequence(&Snapshot{Name: "bad", Size: 9, Bits: []byte{0}}))
}

func TestMemoryStore(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			s := NewMemoryStore(c)
			exerciseStore(t, s)
			require.NoError(t, s.Close())
		})
	}
}

func TestBoltStore(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "densify.db")
			s, err := NewBoltStore(path, c)
			require.NoError(t, err)
			exerciseStore(t, s)
			require.NoError(t, s.Close())
		})
	}
}

func TestBoltStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "densify.db")
	s, err := NewBoltStore(path, CompressionZSTD)
	require.NoError(t, err)
	snap := sampleSnapshot("persist", 4096)
	require.NoError(t, s.SaveSequence(snap))
	require.NoError(t, s.Close())

	// a reader configured differently still decodes what was written
	s, err = NewBoltStore(path, CompressionNone)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetSequence("persist")
	require.NoError(t, err)
	assertSnapshotEqual(t, snap, got)
}

func TestSqliteStore(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "densify.sqlite")
			s, err := NewSqliteStore(path, c)
			require.NoError(t, err)
			exerciseStore(t, s)
			require.NoError(t, s.Close())
		})
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("DENSIFY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DENSIFY_TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(addr, "", 15, CompressionLZ4)
	require.NoError(t, err)
	defer s.Close()

	for _, name := range []string{"alpha", "beta"} {
		require.NoError(t, s.DeleteSequence(name))
	}
	exerciseStore(t, s)
	require.NoError(t, s.DeleteSequence("beta"))
}
