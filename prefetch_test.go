package pokedex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIndexServer serves an index of generated names plus a lookup endpoint
// for each of them. Names listed in broken get a 404 on lookup.
func newIndexServer(t *testing.T, delay time.Duration, broken ...string) *httptest.Server {
	t.Helper()
	isBroken := func(name string) bool {
		for _, b := range broken {
			if b == name {
				return true
			}
		}
		return false
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/pokemon/"), "/")
		if name == "" {
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			results := make([]string, 0, limit)
			for i := 0; i < limit; i++ {
				results = append(results, fmt.Sprintf(`{"name": "poke-%d", "url": ""}`, i))
			}
			fmt.Fprintf(w, `{"count": %d, "results": [%s]}`, limit, strings.Join(results, ","))
			return
		}
		time.Sleep(delay)
		if isBroken(name) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"id": 1, "name": %q, "height": 1, "weight": 1}`, name)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPrefetchFillsCache(t *testing.T) {
	srv := newIndexServer(t, 0)
	cache := newTestCache(t)
	client := newTestClient(srv.URL, cache)

	prefetcher := NewPrefetcher(client, 3)
	prefetcher.Start(context.Background())
	aborted := prefetcher.WaitForDone()

	assert.False(t, aborted)
	require.NoError(t, prefetcher.Error())
	fetched, failed := prefetcher.Counts()
	assert.Equal(t, 3, fetched)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1.0, prefetcher.Progress())
	for i := 0; i < 3; i++ {
		_, ok := cache.Get(pokemonKey(fmt.Sprintf("poke-%d", i)))
		assert.True(t, ok, "poke-%d should be cached", i)
	}
}

func TestPrefetchProgressIsMonotonic(t *testing.T) {
	srv := newIndexServer(t, 0)
	cache := newTestCache(t)
	client := newTestClient(srv.URL, cache)

	prefetcher := NewPrefetcher(client, 5)
	var progress []float64
	prefetcher.SetProgressFunction(func(status PrefetchStatus) {
		progress = append(progress, prefetcher.Progress())
	})
	prefetcher.Start(context.Background())
	aborted := prefetcher.WaitForDone()

	assert.False(t, aborted)
	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1],
			"progress went backwards at step %d", i)
	}
	assert.Equal(t, 1.0, prefetcher.Progress())
}

func TestPrefetchRecordsFailures(t *testing.T) {
	srv := newIndexServer(t, 0, "poke-1")
	cache := newTestCache(t)
	client := newTestClient(srv.URL, cache)

	prefetcher := NewPrefetcher(client, 3)
	prefetcher.Start(context.Background())
	aborted := prefetcher.WaitForDone()

	assert.False(t, aborted)
	require.NoError(t, prefetcher.Error())
	fetched, failed := prefetcher.Counts()
	assert.Equal(t, 2, fetched)
	assert.Equal(t, 1, failed)
	_, ok := cache.Get(pokemonKey("poke-1"))
	assert.False(t, ok)
}

func TestPrefetchIndexFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := newTestClient(srv.URL, nil)

	prefetcher := NewPrefetcher(client, 3)
	prefetcher.Start(context.Background())
	prefetcher.WaitForDone()

	require.Error(t, prefetcher.Error())
	assert.True(t, prefetcher.Done())
}

func TestPrefetchRollback(t *testing.T) {
	srv := newIndexServer(t, 10*time.Millisecond)
	cache := newTestCache(t)
	client := newTestClient(srv.URL, cache)

	prefetcher := NewPrefetcher(client, 50)
	abortSeen := make(chan struct{})
	go func() {
		for {
			if status := prefetcher.Status(); status.Aborted {
				close(abortSeen)
				return
			}
		}
	}()
	prefetcher.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	prefetcher.Rollback()

	select {
	case <-abortSeen:
	case <-time.After(5 * time.Second):
		t.Fatal("prefetcher never reported the abort")
	}
	assert.True(t, prefetcher.Done())
	fetched, _ := prefetcher.Counts()
	assert.Equal(t, 0, fetched)
	for i := 0; i < 50; i++ {
		_, ok := cache.Get(pokemonKey(fmt.Sprintf("poke-%d", i)))
		assert.False(t, ok, "poke-%d should have been rolled back", i)
	}
}
