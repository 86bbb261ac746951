package calendar

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/telecal/telecal/internal/episodate"
	"github.com/telecal/telecal/internal/showcache"
	"github.com/telecal/telecal/internal/shows"
	"github.com/telecal/telecal/internal/testutil"
)

type staticProvider struct {
	shows map[string]*episodate.Show
}

func (p *staticProvider) GetShow(ctx context.Context, id string) (*episodate.Show, error) {
	show, ok := p.shows[id]
	if !ok {
		return nil, &episodate.NoDataError{ShowID: id}
	}
	return show, nil
}

func newFeedService(t *testing.T, provider episodate.Provider, tracked ...string) *Service {
	t.Helper()

	tdb := testutil.NewTestDB(t)
	cache, err := showcache.New(filepath.Join(t.TempDir(), "cache.db"), provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	showService := shows.NewService(tdb.Conn, cache, zerolog.Nop())
	for _, id := range tracked {
		if err := showService.Add(context.Background(), id); err != nil {
			t.Fatalf("failed to track %q: %v", id, err)
		}
	}

	return NewService(showService, zerolog.Nop())
}

func TestService_Feed(t *testing.T) {
	provider := &staticProvider{shows: map[string]*episodate.Show{
		"severance": {
			Name: "Severance",
			Episodes: []episodate.Episode{
				{Season: 1, Episode: 1, Name: "Good News About Hell", AirDate: "2022-02-18 08:00:00"},
				{Season: 1, Episode: 2, Name: "Half Loop", AirDate: "2022-02-18 08:00:00"},
			},
		},
	}}
	svc := newFeedService(t, provider, "severance")

	feed, err := svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	if !strings.Contains(feed, "SUMMARY:Severance | Good News About Hell") {
		t.Errorf("feed missing first episode:\n%s", feed)
	}
	if !strings.Contains(feed, "SUMMARY:Severance | Half Loop") {
		t.Errorf("feed missing second episode:\n%s", feed)
	}
	// Air date 2022-02-18 shifts one day forward.
	if !strings.Contains(feed, "DTSTART;VALUE=DATE:20220219") {
		t.Errorf("feed missing shifted air date:\n%s", feed)
	}
}

func TestService_Feed_SkipsMissingAirDates(t *testing.T) {
	provider := &staticProvider{shows: map[string]*episodate.Show{
		"severance": {
			Name: "Severance",
			Episodes: []episodate.Episode{
				{Season: 2, Episode: 1, Name: "Announced", AirDate: ""},
				{Season: 2, Episode: 2, Name: "Dated", AirDate: "2025-01-17"},
			},
		},
	}}
	svc := newFeedService(t, provider, "severance")

	feed, err := svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	if strings.Contains(feed, "Announced") {
		t.Errorf("episode without air date produced an event:\n%s", feed)
	}
	if !strings.Contains(feed, "SUMMARY:Severance | Dated") {
		t.Errorf("dated episode missing from feed:\n%s", feed)
	}
}

func TestService_Feed_EmptyRegistry(t *testing.T) {
	svc := newFeedService(t, &staticProvider{})

	feed, err := svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Errorf("empty feed is not a valid calendar:\n%s", feed)
	}
}

func TestService_Feed_ColdFetchFailure(t *testing.T) {
	svc := newFeedService(t, &staticProvider{}, "unknown")

	if _, err := svc.Feed(context.Background()); err == nil {
		t.Fatal("Feed() with a failing cold entry should fail, not degrade")
	}
}
