package pokedex

import (
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const (
	pokemonKeyPrefix = "poke:"
	spriteKeyPrefix  = "sprite:"
	historyKeyPrefix = "hist:"
)

// Cache is the on-disk store for API responses, sprite images and the lookup
// history. A nil *Cache is valid and caches nothing, which is how
// POKEDEX_NOCACHE=1 is implemented.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens (or creates) the cache database in the given directory.
// Entries expire after the given ttl.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

func pokemonKey(name string) string { return pokemonKeyPrefix + name }
func spriteKey(name string) string  { return spriteKeyPrefix + name }

// Get returns a cached value, or false if the key is missing or expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}
	return val, true
}

// Set stores a value under the given key with the cache's TTL.
func (c *Cache) Set(key string, val []byte) error {
	if c == nil {
		return nil
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), val).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	if c == nil {
		return nil
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// historyKeyTimeFormat is fixed-width so that the keys sort
// chronologically. RFC3339Nano would trim trailing zeros and break that.
const historyKeyTimeFormat = "2006-01-02T15:04:05.000000000"

// AddHistory records a successful lookup. History entries are keyed by
// timestamp so that a reverse scan returns the most recent ones first. They
// are kept four times as long as cached responses.
func (c *Cache) AddHistory(name string) error {
	if c == nil {
		return nil
	}
	key := historyKeyPrefix + time.Now().UTC().Format(historyKeyTimeFormat)
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(name)).WithTTL(4 * c.ttl)
		return txn.SetEntry(entry)
	})
}

// Recent returns up to n names from the lookup history, most recent first.
func (c *Cache) Recent(n int) (names []string) {
	if c == nil || n <= 0 {
		return nil
	}
	prefix := []byte(historyKeyPrefix)
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		// seek past the end of the prefix range, then walk backwards
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(names) < n; it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			names = append(names, string(val))
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("history scan failed")
	}
	return names
}
