package showcache

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/telecal/telecal/internal/episodate"
)

// fakeProvider counts fetches and serves canned payloads per id.
type fakeProvider struct {
	calls int32
	shows map[string]*episodate.Show
	err   error
}

func (f *fakeProvider) GetShow(ctx context.Context, id string) (*episodate.Show, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	show, ok := f.shows[id]
	if !ok {
		return nil, &episodate.NoDataError{ShowID: id}
	}
	return show, nil
}

func newTestStore(t *testing.T, provider episodate.Provider) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := New(path, provider, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	store := newTestStore(t, &fakeProvider{})

	want := &episodate.Show{
		Name: "Severance",
		Episodes: []episodate.Episode{
			{Season: 1, Episode: 1, Name: "Good News About Hell", AirDate: "2022-02-18 08:00:00"},
		},
	}
	if err := store.Put("severance", want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := store.Get("severance")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit after Put")
	}
	if got.Name != want.Name || len(got.Episodes) != 1 {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t, &fakeProvider{})

	_, ok, err := store.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("expected miss for absent entry")
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	store := newTestStore(t, &fakeProvider{})

	store.Put("severance", &episodate.Show{Name: "old"})
	store.Put("severance", &episodate.Show{Name: "new"})

	got, ok, _ := store.Get("severance")
	if !ok || got.Name != "new" {
		t.Errorf("expected last write to win, got %+v", got)
	}
}

func TestStore_GetOrFetch_ColdThenWarm(t *testing.T) {
	provider := &fakeProvider{shows: map[string]*episodate.Show{
		"severance": {Name: "Severance"},
	}}
	store := newTestStore(t, provider)

	show, err := store.GetOrFetch(context.Background(), "severance")
	if err != nil {
		t.Fatalf("GetOrFetch() error = %v", err)
	}
	if show.Name != "Severance" {
		t.Errorf("show.Name = %q", show.Name)
	}
	if n := atomic.LoadInt32(&provider.calls); n != 1 {
		t.Fatalf("cold read fetched %d times, want 1", n)
	}

	// Second read must be served from the cache.
	if _, err := store.GetOrFetch(context.Background(), "severance"); err != nil {
		t.Fatalf("GetOrFetch() warm error = %v", err)
	}
	if n := atomic.LoadInt32(&provider.calls); n != 1 {
		t.Errorf("warm read fetched again, total calls = %d", n)
	}
}

func TestStore_GetOrFetch_FetchFailurePropagates(t *testing.T) {
	provider := &fakeProvider{err: &episodate.TransportError{ShowID: "severance", Err: errors.New("timeout")}}
	store := newTestStore(t, provider)

	_, err := store.GetOrFetch(context.Background(), "severance")
	var transport *episodate.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("GetOrFetch() error = %v, want *TransportError", err)
	}

	// The failure must not be negatively cached.
	_, ok, _ := store.Get("severance")
	if ok {
		t.Error("failed fetch left a cache entry behind")
	}
}

func TestStore_GetOrFetch_NoDataPropagates(t *testing.T) {
	store := newTestStore(t, &fakeProvider{shows: map[string]*episodate.Show{}})

	_, err := store.GetOrFetch(context.Background(), "unknown")
	var noData *episodate.NoDataError
	if !errors.As(err, &noData) {
		t.Fatalf("GetOrFetch() error = %v, want *NoDataError", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t, &fakeProvider{})

	store.Put("severance", &episodate.Show{Name: "Severance"})
	if err := store.Delete("severance"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := store.Get("severance"); ok {
		t.Error("entry still present after Delete")
	}

	// Deleting an absent entry is not an error.
	if err := store.Delete("severance"); err != nil {
		t.Errorf("Delete() of absent entry error = %v", err)
	}
}
