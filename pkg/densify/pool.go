package densify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/umegbewe/densify/internal/bitmap"
	"github.com/umegbewe/densify/internal/metrics"
	"github.com/umegbewe/densify/internal/storage"
)

var (
	ErrUnknownSequence = errors.New("densify: unknown sequence")
	ErrSizeMismatch    = errors.New("densify: sequence exists with a different size")
	ErrInvalidCount    = errors.New("densify: invalid insertion count")
)

type tracked struct {
	mutex   sync.Mutex
	seq     *Sequence
	inserts uint64
	deleted bool
}

// Pool owns a set of named sequences and persists every change to a store.
// Insertions on different sequences may run concurrently.
type Pool struct {
	store    storage.SequenceStore
	finder   Finder
	strategy string
	verify   bool
	mutex    sync.RWMutex
	seqs     map[string]*tracked
}

// NewPool restores every sequence held by store. With verify set, each
// insertion is cross-checked against Reference on a copy of the sequence.
func NewPool(strategy string, verify bool, store storage.SequenceStore) (*Pool, error) {
	finder, err := Lookup(strategy)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		store:    store,
		finder:   finder,
		strategy: strategy,
		verify:   verify,
		seqs:     make(map[string]*tracked),
	}

	snaps, err := store.ListSequences()
	if err != nil {
		return nil, fmt.Errorf("failed to load sequences: %w", err)
	}

	for _, snap := range snaps {
		seq, err := bitmap.FromBytes(snap.Size, snap.Bits)
		if err != nil {
			return nil, fmt.Errorf("sequence %q: %w", snap.Name, err)
		}
		p.seqs[snap.Name] = &tracked{seq: seq, inserts: snap.Inserts}
		updateGauges(snap.Name, seq)
		log.Infof("Restored sequence %q (%d bits, %d ones, %d inserts)", snap.Name, seq.Len(), seq.OnesCount(), snap.Inserts)
	}
	return p, nil
}

func (p *Pool) Strategy() string {
	return p.strategy
}

// Create registers a zeroed sequence. An existing sequence of the same size
// is kept as is.
func (p *Pool) Create(name string, size int) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if t, ok := p.seqs[name]; ok {
		if t.seq.Len() != size {
			return fmt.Errorf("%w: %q has %d bits, requested %d", ErrSizeMismatch, name, t.seq.Len(), size)
		}
		return nil
	}

	seq, err := NewSequence(size)
	if err != nil {
		return err
	}
	t := &tracked{seq: seq}
	if err := p.save(name, t); err != nil {
		return err
	}

	p.seqs[name] = t
	updateGauges(name, seq)
	log.Infof("Created sequence %q with %d bits", name, size)
	return nil
}

func (p *Pool) get(name string) (*tracked, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	t, ok := p.seqs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}
	return t, nil
}

// Insert sets one bit of the named sequence and returns its index.
// If the store rejects the result the sequence is left unchanged.
func (p *Pool) Insert(name string) (int, error) {
	t, err := p.get(name)
	if err != nil {
		return 0, err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	return p.insertLocked(name, t)
}

func (p *Pool) insertLocked(name string, t *tracked) (int, error) {
	if t.deleted {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}
	prev := t.seq.Clone()
	full := prev.OnesCount() == prev.Len()

	start := time.Now()
	pos := p.finder(t.seq)
	metrics.InsertLatency.WithLabelValues(p.strategy).Observe(time.Since(start).Seconds())

	if p.verify {
		if want := Reference(prev.Clone()); want != pos {
			metrics.VerifyMismatches.Inc()
			log.Errorf("Strategy %s chose bit %d of %q, reference chose %d", p.strategy, pos, name, want)
		}
	}

	t.inserts++
	if err := p.save(name, t); err != nil {
		t.seq = prev
		t.inserts--
		return 0, err
	}

	metrics.Insertions.WithLabelValues(p.strategy).Inc()
	if full {
		metrics.NoopInsertions.Inc()
	}
	updateGauges(name, t.seq)
	log.Debugf("Inserted bit %d into %q", pos, name)
	return pos, nil
}

// Fill performs count insertions on the named sequence and returns the
// indices in order. It stops early when ctx is done.
func (p *Pool) Fill(ctx context.Context, name string, count int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	t, err := p.get(name)
	if err != nil {
		return nil, err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	positions := make([]int, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return positions, err
		}
		pos, err := p.insertLocked(name, t)
		if err != nil {
			return positions, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// InsertAll performs one insertion on every sequence, each on its own
// goroutine, and returns the chosen index per sequence.
func (p *Pool) InsertAll(ctx context.Context) (map[string]int, error) {
	names := p.Names()

	var mu sync.Mutex
	result := make(map[string]int, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pos, err := p.Insert(name)
			if err != nil {
				return fmt.Errorf("sequence %q: %w", name, err)
			}
			mu.Lock()
			result[name] = pos
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return result, err
}

// Snapshot returns a copy of the named sequence.
func (p *Pool) Snapshot(name string) (*Sequence, error) {
	t, err := p.get(name)
	if err != nil {
		return nil, err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.seq.Clone(), nil
}

// Inserts returns the number of insertions applied to the named sequence.
func (p *Pool) Inserts(name string) (uint64, error) {
	t, err := p.get(name)
	if err != nil {
		return 0, err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.inserts, nil
}

// Reset clears every bit of the named sequence.
func (p *Pool) Reset(name string) error {
	t, err := p.get(name)
	if err != nil {
		return err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.deleted {
		return fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}

	prev, prevInserts := t.seq, t.inserts
	seq, err := NewSequence(prev.Len())
	if err != nil {
		return err
	}
	t.seq, t.inserts = seq, 0
	if err := p.save(name, t); err != nil {
		t.seq, t.inserts = prev, prevInserts
		return err
	}

	updateGauges(name, t.seq)
	log.Infof("Reset sequence %q", name)
	return nil
}

func (p *Pool) Delete(name string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	t, ok := p.seqs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := p.store.DeleteSequence(name); err != nil {
		metrics.StoreErrors.WithLabelValues("delete").Inc()
		return err
	}

	t.deleted = true
	delete(p.seqs, name)
	metrics.Forget(name)
	log.Infof("Deleted sequence %q", name)
	return nil
}

// Names lists the sequences in sorted order.
func (p *Pool) Names() []string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	names := make([]string, 0, len(p.seqs))
	for name := range p.seqs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Pool) Close() error {
	return p.store.Close()
}

func (p *Pool) save(name string, t *tracked) error {
	bits := make([]byte, t.seq.ByteCount())
	copy(bits, t.seq.Bytes())

	err := p.store.SaveSequence(&storage.Snapshot{
		Name:      name,
		Size:      t.seq.Len(),
		Bits:      bits,
		Inserts:   t.inserts,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		log.Warnf("Failed to save sequence %q: %v", name, err)
		return fmt.Errorf("failed to save sequence %q: %w", name, err)
	}
	return nil
}
