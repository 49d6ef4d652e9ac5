package pokedex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the API doesn't know a Pokémon by the given
// name.
var ErrNotFound = errors.New("pokémon not found")

// StatusError is returned for API responses that are neither success, 404,
// nor a (retried) server error.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected API status %d", e.Code)
}

const (
	userAgent     = "pokedex/1.0 (github.com/grandchild/pokedex)"
	lookupRetries = 2
	retryDelay    = 500 * time.Millisecond
)

// Client fetches Pokémon from a PokeAPI-compatible endpoint. Requests are
// rate-limited, and successful responses go through the cache (if one is
// set). Safe for concurrent use.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	cache   *Cache
}

// NewClient creates a client for the given API base URL. The cache may be
// nil, in which case every lookup hits the network.
func NewClient(base string, timeout time.Duration, perSecond float64, cache *Cache) *Client {
	if perSecond <= 0 {
		perSecond = 4
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 2),
		cache:   cache,
	}
}

// Lookup fetches a single Pokémon by its (already sanitized) name. It
// returns both the decoded Pokémon and the raw response body, so callers can
// re-serve the original JSON without a re-encoding round trip.
func (c *Client) Lookup(ctx context.Context, name string) (*Pokemon, []byte, error) {
	if raw, ok := c.cache.Get(pokemonKey(name)); ok {
		if p, err := decodePokemon(raw); err == nil {
			cacheHits.Inc()
			lookupsTotal.WithLabelValues("cached").Inc()
			c.recordHistory(name)
			return p, raw, nil
		}
		// corrupt cache entry, fall through to the network
		_ = c.cache.Delete(pokemonKey(name))
	}
	cacheMisses.Inc()

	raw, err := c.get(ctx, c.base+"/pokemon/"+url.PathEscape(name)+"/")
	if err != nil {
		lookupsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, nil, err
	}
	p, err := decodePokemon(raw)
	if err != nil {
		lookupsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("decoding response for '%s': %w", name, err)
	}
	if err := c.cache.Set(pokemonKey(name), raw); err != nil {
		logger.Warn().Err(err).Str("name", name).Msg("caching response failed")
	}
	c.recordHistory(name)
	lookupsTotal.WithLabelValues("ok").Inc()
	return p, raw, nil
}

// Sprite fetches the Pokémon's artwork image (see Pokemon.ArtworkURL for
// which one that is).
func (c *Client) Sprite(ctx context.Context, p *Pokemon) ([]byte, error) {
	spriteURL := p.ArtworkURL()
	if spriteURL == "" {
		return nil, fmt.Errorf("no sprite available for '%s'", p.Name)
	}
	if img, ok := c.cache.Get(spriteKey(p.Name)); ok {
		cacheHits.Inc()
		return img, nil
	}
	cacheMisses.Inc()
	img, err := c.get(ctx, spriteURL)
	if err != nil {
		return nil, fmt.Errorf("fetching sprite for '%s': %w", p.Name, err)
	}
	if err := c.cache.Set(spriteKey(p.Name), img); err != nil {
		logger.Warn().Err(err).Str("name", p.Name).Msg("caching sprite failed")
	}
	return img, nil
}

// Index returns one page of the Pokémon name index.
func (c *Client) Index(ctx context.Context, limit, offset int) (*Page, error) {
	raw, err := c.get(ctx, fmt.Sprintf("%s/pokemon/?limit=%d&offset=%d", c.base, limit, offset))
	if err != nil {
		return nil, err
	}
	page := &Page{}
	if err := json.Unmarshal(raw, page); err != nil {
		return nil, fmt.Errorf("decoding index page: %w", err)
	}
	return page, nil
}

// get performs a rate-limited GET with a bounded retry on server and
// transport errors. 404 is mapped to ErrNotFound and never retried.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt <= lookupRetries; attempt++ {
		if attempt > 0 {
			logger.Debug().Int("attempt", attempt).Str("url", rawURL).Msg("retrying request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryDelay):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		res, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		switch {
		case res.StatusCode == http.StatusOK:
			if err != nil {
				lastErr = err
				continue
			}
			return body, nil
		case res.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case res.StatusCode >= 500:
			lastErr = &StatusError{res.StatusCode}
			continue
		default:
			return nil, &StatusError{res.StatusCode}
		}
	}
	return nil, lastErr
}

func (c *Client) recordHistory(name string) {
	if err := c.cache.AddHistory(name); err != nil {
		logger.Warn().Err(err).Str("name", name).Msg("recording history failed")
	}
}

func outcomeLabel(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return "error"
}
