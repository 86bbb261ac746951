package shows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/telecal/telecal/internal/episodate"
	"github.com/telecal/telecal/internal/showcache"
)

var (
	// ErrAlreadyExists is returned when adding a show id that is tracked.
	ErrAlreadyExists = errors.New("show is already tracked")
	// ErrNotFound is returned when removing a show id that is not tracked.
	ErrNotFound = errors.New("show is not tracked")
)

// TrackedShow is one row of the registry: a show id the user wants
// synchronized. The registry is the source of truth for which shows the
// sweep and the read views cover.
type TrackedShow struct {
	ID string `json:"id"`
}

// Service manages the tracked-show registry and the cache-aside read path
// over it.
type Service struct {
	db     *sql.DB
	cache  *showcache.Store
	logger zerolog.Logger
}

// NewService creates a new registry service.
func NewService(db *sql.DB, cache *showcache.Store, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		cache:  cache,
		logger: logger.With().Str("component", "shows").Logger(),
	}
}

// Add starts tracking a show. The primary key constraint is the duplicate
// check: a conflicting insert affects zero rows and maps to
// ErrAlreadyExists, so concurrent adds cannot both succeed.
func (s *Service) Add(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO tv_shows (id) VALUES (?)", id)
	if err != nil {
		return fmt.Errorf("failed to insert show: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}

	s.logger.Info().Str("show", id).Msg("Tracking show")
	return nil
}

// Remove stops tracking a show. The cache entry is left to linger; it is
// never read without a registry row.
func (s *Service) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tv_shows WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete show: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info().Str("show", id).Msg("Stopped tracking show")
	return nil
}

// ScanPage returns one page of the registry ordered by id. An empty page
// signals the end of a sweep. The ordering is stable so repeated scans with
// an advancing offset visit every row exactly once when the registry is not
// mutated mid-scan.
func (s *Service) ScanPage(ctx context.Context, offset, limit int) ([]TrackedShow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM tv_shows ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to scan registry page: %w", err)
	}
	defer rows.Close()

	var page []TrackedShow
	for rows.Next() {
		var show TrackedShow
		if err := rows.Scan(&show.ID); err != nil {
			return nil, fmt.Errorf("failed to scan registry row: %w", err)
		}
		page = append(page, show)
	}
	return page, rows.Err()
}

// Count returns the number of tracked shows.
func (s *Service) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tv_shows").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count shows: %w", err)
	}
	return n, nil
}

// payloadPageSize bounds registry reads on the request path the same way
// the sweep bounds its work.
const payloadPageSize = 50

// Payloads returns the episode payload for every tracked show in registry
// scan order, reading through the cache (cache-aside). Any failed fetch for
// a cold entry fails the whole call: callers get a complete view or an
// error, never a silently partial one.
func (s *Service) Payloads(ctx context.Context) ([]*episodate.Show, error) {
	var payloads []*episodate.Show

	for offset := 0; ; offset += payloadPageSize {
		page, err := s.ScanPage(ctx, offset, payloadPageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return payloads, nil
		}

		for _, tracked := range page {
			show, err := s.cache.GetOrFetch(ctx, tracked.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load show %s: %w", tracked.ID, err)
			}
			payloads = append(payloads, show)
		}
	}
}

// SortPayloadsByName sorts payloads case-insensitively by show name,
// ascending. The sort is stable: names differing only in case keep their
// relative input order.
func SortPayloadsByName(payloads []*episodate.Show) {
	sort.SliceStable(payloads, func(i, j int) bool {
		return strings.ToUpper(payloads[i].Name) < strings.ToUpper(payloads[j].Name)
	})
}
