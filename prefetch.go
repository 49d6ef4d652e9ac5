package pokedex

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type (
	// PrefetchEntry is a single Pokémon in the prefetch set, with a flag
	// indicating whether it has been fetched into the cache, and the fetch
	// error if there was one.
	PrefetchEntry struct {
		Name   string
		cached bool
		err    error
	}
	// PrefetchStatus is a message struct that gets passed around during the
	// prefetch. All fields are optional and contain the current entry,
	// whether the prefetch as a whole is finished or not, or whether it's
	// been aborted and rolled back.
	PrefetchStatus struct {
		Entry   *PrefetchEntry
		Done    bool
		Aborted bool
	}
	// Prefetcher bulk-fetches the first pokémon of the index into the cache,
	// so that later lookups (and offline browsing) are instant. It contains
	// the entry list and progress counts, as well as 3 different message
	// channels, for each abort and its confirmation as well as a status
	// channel.
	Prefetcher struct {
		client              *Client
		count               int
		fetched             int
		failed              int
		entries             []*PrefetchEntry
		err                 error
		done                bool
		statusChannel       chan PrefetchStatus
		abortChannel        chan bool
		abortConfirmChannel chan bool
		actionLock          sync.Mutex
		progressFunction    func(PrefetchStatus)
	}
)

// NewPrefetcher creates a Prefetcher for the first count entries of the
// Pokémon index:
//
//	prefetcher := NewPrefetcher(client, 151)
//	prefetcher.Start(ctx)
//	/* some watch loop with 'prefetcher.Status()' */
//	prefetcher.WaitForDone()
func NewPrefetcher(client *Client, count int) *Prefetcher {
	return &Prefetcher{
		client:              client,
		count:               count,
		statusChannel:       make(chan PrefetchStatus, 1),
		abortChannel:        make(chan bool, 1),
		abortConfirmChannel: make(chan bool, 1),
		progressFunction:    func(status PrefetchStatus) {},
	}
}

// Start runs the prefetch in a separate goroutine and returns immediately.
// Use Status() to get updates about the progress.
func (p *Prefetcher) Start(ctx context.Context) { go p.run(ctx) }

// run performs the prefetch. The index listing is fetched first; failing
// that fails the whole prefetch. Individual fetch failures are recorded on
// their entry and skipped.
func (p *Prefetcher) run(ctx context.Context) {
	p.done = false
	page, err := p.client.Index(ctx, p.count, 0)
	if err != nil {
		p.err = fmt.Errorf("fetching index: %w", err)
		p.done = true
		p.setStatus(PrefetchStatus{Done: true})
		return
	}
	p.actionLock.Lock()
	defer p.actionLock.Unlock()
	p.entries = make([]*PrefetchEntry, 0, len(page.Results))
	for _, result := range page.Results {
		p.entries = append(p.entries, &PrefetchEntry{Name: result.Name})
	}
	for _, entry := range p.entries {
		select {
		case <-p.abortChannel:
			p.abortConfirmChannel <- true
			return
		default:
			status := PrefetchStatus{Entry: entry}
			p.setStatus(status)
			p.progressFunction(status)
			_, _, err := p.client.Lookup(ctx, entry.Name)
			if err != nil {
				entry.err = err
				p.failed++
				logger.Warn().Err(err).Str("name", entry.Name).Msg("prefetch entry failed")
			} else {
				entry.cached = true
				p.fetched++
			}
			p.setStatus(PrefetchStatus{Entry: entry})
		}
	}
	p.done = true
	p.setStatus(PrefetchStatus{Done: true})
}

// Abort can be called to stop the prefetcher. It will not stop immediately,
// but finish fetching the current entry.
//
// Use Rollback() instead of Abort() if you want the already-cached entries
// removed as well.
func (p *Prefetcher) Abort() {
	p.abortChannel <- true
	<-p.abortConfirmChannel
}

// Rollback aborts and removes the entries cached so far, in reverse order.
// Lookup history entries are left alone.
func (p *Prefetcher) Rollback() {
	p.Abort()
	p.actionLock.Lock()
	defer p.actionLock.Unlock()
	for i := len(p.entries) - 1; i >= 0; i-- {
		if p.entries[i].cached {
			if err := p.client.cache.Delete(pokemonKey(p.entries[i].Name)); err != nil {
				logger.Warn().Err(err).Str("name", p.entries[i].Name).Msg("rollback delete failed")
			}
			p.entries[i].cached = false
			p.fetched--
			p.setStatus(PrefetchStatus{Entry: p.entries[i]})
		}
	}
	p.done = true
	p.setStatus(PrefetchStatus{Aborted: true})
}

// setStatus is a non-blocking write to the status channel. If no-one is
// listening through Status() then it will simply do nothing and return.
func (p *Prefetcher) setStatus(status PrefetchStatus) {
	select {
	case p.statusChannel <- status:
	case <-time.After(1 * time.Second):
	}
}

// Status returns the current prefetch status.
func (p *Prefetcher) Status() PrefetchStatus {
	select {
	case status := <-p.statusChannel:
		return status
	case <-time.After(1 * time.Second):
		return PrefetchStatus{}
	}
}

// NextEntry returns the entry that the prefetcher will fetch next, or the
// one that is currently being fetched.
func (p *Prefetcher) NextEntry() *PrefetchEntry {
	for _, entry := range p.entries {
		if !entry.cached && entry.err == nil {
			return entry
		}
	}
	return nil
}

// SetProgressFunction registers a callback invoked once per entry.
func (p *Prefetcher) SetProgressFunction(function func(PrefetchStatus)) {
	p.progressFunction = function
}

// Progress returns the ratio between handled (fetched or failed) entries and
// all entries. The result is a float between 0.0 and 1.0, inclusive.
func (p *Prefetcher) Progress() float64 {
	total := len(p.entries)
	if total == 0 {
		total = p.count
	}
	if total == 0 {
		return 0
	}
	return float64(p.fetched+p.failed) / float64(total)
}

// Counts returns how many entries were fetched and how many failed.
func (p *Prefetcher) Counts() (fetched, failed int) { return p.fetched, p.failed }

// Done reports whether the prefetcher has finished (or rolled back).
func (p *Prefetcher) Done() bool { return p.done }

// Error returns the fatal prefetch error, if there was one.
func (p *Prefetcher) Error() error { return p.err }

// WaitForDone returns only after the prefetcher has finished fetching (or
// rolling back). It reports whether the prefetch was aborted.
func (p *Prefetcher) WaitForDone() (aborted bool) {
	for {
		status := <-p.statusChannel
		if status.Done || status.Aborted {
			return status.Aborted
		}
	}
}
