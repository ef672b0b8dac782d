// Package convcache persists converted coordinates in a Pebble key/value
// store so repeated batch runs over large input files skip work they have
// already done. Keys hash the conversion date, method code, and quantized
// location; values are the raw result triple, NaNs included.
package convcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/zeebo/xxh3"

	"magcoord/aacgm"
)

const (
	recordSize = 24 // three float64 results

	// Locations are quantized to 1e-4 degrees (~11 m) and 1 m of
	// altitude before hashing; finer differences do not survive the
	// conversion's own accuracy anyway.
	latLonQuantum = 1e-4
	heightQuantum = 1e-3
)

var errStoreClosed = errors.New("convcache: store is closed")

const (
	defaultCacheSizeBytes    = int64(16 << 20)
	defaultMemTableSizeBytes = uint64(8 << 20)
)

// Options tunes the underlying Pebble instance. Zero values become safe
// defaults.
type Options struct {
	CacheSizeBytes    int64
	MemTableSizeBytes uint64
}

func sanitizeOptions(o Options) Options {
	if o.CacheSizeBytes <= 0 {
		o.CacheSizeBytes = defaultCacheSizeBytes
	}
	if o.MemTableSizeBytes == 0 {
		o.MemTableSizeBytes = defaultMemTableSizeBytes
	}
	return o
}

// Store is a conversion result cache. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	db     *pebble.DB
	closed bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Open opens (or creates) a cache at dir.
func Open(dir string, opts Options) (*Store, error) {
	opts = sanitizeOptions(opts)
	cache := pebble.NewCache(opts.CacheSizeBytes)
	defer cache.Unref()
	db, err := pebble.Open(dir, &pebble.Options{
		Cache:        cache,
		MemTableSize: opts.MemTableSizeBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("convcache: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// key packs the lookup dimensions and hashes them. The date is truncated
// to the day: coefficient interpolation does not move within one.
func key(t time.Time, code aacgm.Code, lat, lon, heightKm float64) []byte {
	var buf [28]byte
	day := t.UTC().Unix() / 86400
	binary.LittleEndian.PutUint64(buf[0:], uint64(day))
	binary.LittleEndian.PutUint32(buf[8:], uint32(code))
	binary.LittleEndian.PutUint64(buf[12:], uint64(int64(math.Round(lat/latLonQuantum))))
	binary.LittleEndian.PutUint64(buf[20:], uint64(int64(math.Round(lon/latLonQuantum))))
	h := xxh3.Hash(buf[:])
	var hbuf [12]byte
	binary.LittleEndian.PutUint64(hbuf[0:], h)
	binary.LittleEndian.PutUint32(hbuf[8:], uint32(int32(math.Round(heightKm/heightQuantum))))
	return hbuf[:]
}

// Get returns a cached result. ok is false on a miss.
func (s *Store) Get(t time.Time, code aacgm.Code, lat, lon, heightKm float64) (mlat, mlon, r float64, ok bool, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, 0, 0, false, errStoreClosed
	}
	db := s.db
	s.mu.Unlock()

	value, closer, err := db.Get(key(t, code, lat, lon, heightKm))
	if errors.Is(err, pebble.ErrNotFound) {
		s.misses.Add(1)
		return 0, 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, 0, false, fmt.Errorf("convcache: get: %w", err)
	}
	defer closer.Close()
	if len(value) != recordSize {
		return 0, 0, 0, false, fmt.Errorf("convcache: record has %d bytes, want %d", len(value), recordSize)
	}
	mlat = math.Float64frombits(binary.LittleEndian.Uint64(value[0:]))
	mlon = math.Float64frombits(binary.LittleEndian.Uint64(value[8:]))
	r = math.Float64frombits(binary.LittleEndian.Uint64(value[16:]))
	s.hits.Add(1)
	return mlat, mlon, r, true, nil
}

// Put stores a result.
func (s *Store) Put(t time.Time, code aacgm.Code, lat, lon, heightKm, mlat, mlon, r float64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errStoreClosed
	}
	db := s.db
	s.mu.Unlock()

	var value [recordSize]byte
	binary.LittleEndian.PutUint64(value[0:], math.Float64bits(mlat))
	binary.LittleEndian.PutUint64(value[8:], math.Float64bits(mlon))
	binary.LittleEndian.PutUint64(value[16:], math.Float64bits(r))
	if err := db.Set(key(t, code, lat, lon, heightKm), value[:], pebble.NoSync); err != nil {
		return fmt.Errorf("convcache: put: %w", err)
	}
	return nil
}

// Hits reports cache hits since Open.
func (s *Store) Hits() uint64 { return s.hits.Load() }

// Misses reports cache misses since Open.
func (s *Store) Misses() uint64 { return s.misses.Load() }

// Close flushes and closes the store. Safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
