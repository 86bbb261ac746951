package showcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/telecal/telecal/internal/episodate"
)

var bucketShows = []byte("shows")

// Store is the durable show cache: show id mapped to the last episode
// payload observed from the provider. Writes are unconditional overwrites,
// so last-writer-wins; a present entry always reflects some provider
// response at or after its write.
type Store struct {
	db       *bolt.DB
	provider episodate.Provider
	logger   zerolog.Logger
}

// New opens (or creates) the cache store at path.
func New(path string, provider episodate.Provider, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketShows)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:       db,
		provider: provider,
		logger:   logger.With().Str("component", "showcache").Logger(),
	}, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the cached payload for a show, or ok=false when absent.
// It never touches the network.
func (s *Store) Get(id string) (*episodate.Show, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketShows).Get([]byte(id)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	var show episodate.Show
	if err := json.Unmarshal(data, &show); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached show %s: %w", id, err)
	}
	return &show, true, nil
}

// Put stores the payload for a show, overwriting any existing entry.
func (s *Store) Put(id string, show *episodate.Show) error {
	data, err := json.Marshal(show)
	if err != nil {
		return fmt.Errorf("failed to encode show %s: %w", id, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketShows).Put([]byte(id), data)
	})
}

// Delete removes a show's entry. Missing entries are not an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketShows).Delete([]byte(id))
	})
}

// GetOrFetch returns the cached payload for a show, fetching from the
// provider and populating the cache on a miss. A failed fetch propagates
// and leaves the cache untouched; misses are never negatively cached.
// Concurrent callers for the same id may both fetch; the duplicate write
// is a harmless overwrite.
func (s *Store) GetOrFetch(ctx context.Context, id string) (*episodate.Show, error) {
	show, ok, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if ok {
		return show, nil
	}

	show, err = s.provider.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Put(id, show); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("show", id).Msg("Populated cache on read miss")
	return show, nil
}
