package showsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/telecal/telecal/internal/episodate"
	"github.com/telecal/telecal/internal/showcache"
	"github.com/telecal/telecal/internal/shows"
)

// DefaultPageSize bounds per-page fan-out so one slow provider call cannot
// stall the whole sweep and memory stays flat regardless of registry size.
const DefaultPageSize = 10

// Status holds the result of the last refresh sweep.
type Status struct {
	Running   bool      `json:"running"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	Shows     int       `json:"shows"`
	Updated   int       `json:"updated"`
	Failed    int       `json:"failed"`
	ElapsedMs int       `json:"elapsed"`
	Error     string    `json:"error,omitempty"`
}

// Service drives the scheduled episode refresh: it pages through the
// tracked-show registry and rewrites the cache entry for every show it can
// fetch. Guarantees convergence, not ordering: a concurrent read may
// observe a half-finished sweep.
type Service struct {
	registry *shows.Service
	cache    *showcache.Store
	provider episodate.Provider
	pageSize int
	logger   zerolog.Logger

	running atomic.Bool
	mu      sync.RWMutex
	status  Status
}

// NewService creates a new refresh service.
func NewService(registry *shows.Service, cache *showcache.Store, provider episodate.Provider, pageSize int, logger zerolog.Logger) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		registry: registry,
		cache:    cache,
		provider: provider,
		pageSize: pageSize,
		logger:   logger.With().Str("component", "showsync").Logger(),
	}
}

// IsRunning returns whether a sweep is currently running.
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// LastStatus returns the last sweep status.
func (s *Service) LastStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Running = s.running.Load()
	return st
}

// Run executes one full sweep over the registry. A trigger while a sweep is
// already running is a no-op. Per-show failures are logged and contained;
// only a registry scan failure fails the run itself.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug().Msg("Sweep already running, skipping trigger")
		return nil
	}
	defer s.running.Store(false)

	start := time.Now()
	s.logger.Info().Msg("Episode refresh starting")

	var seen, updated, failed int

	for offset := 0; ; offset += s.pageSize {
		page, err := s.registry.ScanPage(ctx, offset, s.pageSize)
		if err != nil {
			s.logger.Error().Err(err).Int("offset", offset).Msg("Failed to scan registry page")
			s.setStatus(Status{LastRun: start, Shows: seen, Updated: updated, Failed: failed, Error: err.Error()})
			return err
		}
		if len(page) == 0 {
			break
		}
		seen += len(page)

		// Fan out one fetch+put per show and wait for all of them to
		// settle before the next page. One show failing must never take
		// the page or the sweep down with it.
		var pageUpdated, pageFailed atomic.Int32
		p := pool.New().WithMaxGoroutines(s.pageSize)
		for _, tracked := range page {
			id := tracked.ID
			p.Go(func() {
				if s.refreshShow(ctx, id) {
					pageUpdated.Add(1)
				} else {
					pageFailed.Add(1)
				}
			})
		}
		p.Wait()

		updated += int(pageUpdated.Load())
		failed += int(pageFailed.Load())
	}

	elapsed := time.Since(start)
	s.setStatus(Status{
		LastRun:   start,
		Shows:     seen,
		Updated:   updated,
		Failed:    failed,
		ElapsedMs: int(elapsed.Milliseconds()),
	})

	s.logger.Info().
		Int("shows", seen).
		Int("updated", updated).
		Int("failed", failed).
		Dur("duration", elapsed).
		Msg("Episode refresh complete")

	return nil
}

// refreshShow fetches one show and rewrites its cache entry. On failure the
// existing entry is left untouched: a stale payload beats an absent one,
// and the next sweep retries naturally.
func (s *Service) refreshShow(ctx context.Context, id string) bool {
	show, err := s.provider.GetShow(ctx, id)
	if err != nil {
		var noData *episodate.NoDataError
		if errors.As(err, &noData) {
			s.logger.Warn().Str("show", id).Msg("Provider has no data for show")
		} else {
			s.logger.Error().Err(err).Str("show", id).Msg("Failed to refresh show")
		}
		return false
	}

	if err := s.cache.Put(id, show); err != nil {
		s.logger.Error().Err(err).Str("show", id).Msg("Failed to cache show")
		return false
	}

	s.logger.Debug().Str("show", id).Int("episodes", len(show.Episodes)).Msg("Refreshed show")
	return true
}

func (s *Service) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}
