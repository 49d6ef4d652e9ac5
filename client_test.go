package pokedex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client pointed at a test server, with the rate
// limit opened up so tests don't wait on it.
func newTestClient(url string, cache *Cache) *Client {
	return NewClient(url, 5*time.Second, 1000, cache)
}

func TestLookupFetchesAndDecodes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/pikachu/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pokemonFixture("")))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	p, raw, err := client.Lookup(context.Background(), "pikachu")
	require.NoError(t, err)
	assert.Equal(t, 25, p.ID)
	assert.Equal(t, "pikachu", p.Name)
	assert.NotEmpty(t, raw)
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	_, _, err := client.Lookup(context.Background(), "missingno")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookupRetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(pokemonFixture("")))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	p, _, err := client.Lookup(context.Background(), "pikachu")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", p.Name)
	assert.Equal(t, int32(3), requests.Load())
}

func TestLookupGivesUpAfterRetries(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	_, _, err := client.Lookup(context.Background(), "pikachu")
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, int32(1+lookupRetries), requests.Load())
}

func TestLookupDoesNotRetryClientErrors(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	_, _, err := client.Lookup(context.Background(), "pikachu")
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Equal(t, int32(1), requests.Load())
}

func TestLookupUsesCache(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/pikachu/", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(pokemonFixture("")))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache := newTestCache(t)
	client := newTestClient(srv.URL, cache)

	_, _, err := client.Lookup(context.Background(), "pikachu")
	require.NoError(t, err)
	p, _, err := client.Lookup(context.Background(), "pikachu")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", p.Name)
	assert.Equal(t, int32(1), requests.Load(), "second lookup should come from the cache")
	assert.Contains(t, cache.Recent(5), "pikachu")
}

func TestSpriteFetchAndCache(t *testing.T) {
	var spriteRequests atomic.Int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/art.png", func(w http.ResponseWriter, r *http.Request) {
		spriteRequests.Add(1)
		w.Write([]byte("pngbytes"))
	})

	p, err := decodePokemon([]byte(pokemonFixture(srv.URL + "/art.png")))
	require.NoError(t, err)

	cache := newTestCache(t)
	client := newTestClient(srv.URL, cache)
	img, err := client.Sprite(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []byte("pngbytes"), img)

	_, err = client.Sprite(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int32(1), spriteRequests.Load())
}

func TestIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"count": 1302, "results": [
			{"name": "bulbasaur", "url": ""},
			{"name": "ivysaur", "url": ""},
			{"name": "venusaur", "url": ""}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(srv.URL, nil)
	page, err := client.Index(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1302, page.Count)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "bulbasaur", page.Results[0].Name)
}
