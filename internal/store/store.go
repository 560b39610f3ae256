package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"techmap/internal/resolve"
)

var (
	// ErrNotFound is returned when a technique has no stored records.
	ErrNotFound = errors.New("not found")
	// ErrInvalidVersion is returned for an empty version or one containing '/'.
	ErrInvalidVersion = errors.New("invalid guideline version")
	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store is closed")
	// ErrIndexTooLarge is returned by Put when an index does not fit in one
	// transaction. The previously stored index is left untouched.
	ErrIndexTooLarge = errors.New("index too large for a single transaction")
)

const indexPrefix = "index/"

// Options configures the underlying BadgerDB.
type Options struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string
	// InMemory keeps everything in RAM; data is lost on Close.
	InMemory bool
	// Logger receives badger's own logging. Nil silences it.
	Logger badger.Logger
	// MemTableSize overrides badger's memtable size when positive. One
	// transaction may use at most 15% of it, which bounds what Put accepts.
	// In-memory stores need at least 8 MiB.
	MemTableSize int64
}

// Store is a BadgerDB-backed index store. Safe for concurrent use.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (creating if needed) the store described by opts.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	if opts.MemTableSize > 0 {
		badgerOpts = badgerOpts.
			WithMemTableSize(opts.MemTableSize).
			WithValueThreshold(min(badgerOpts.ValueThreshold, opts.MemTableSize*15/100))
	}

	// A nil logger keeps badger quiet.
	badgerOpts = badgerOpts.WithLogger(opts.Logger)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens an in-memory store for tests.
func OpenInMemory() (*Store, error) {
	return Open(Options{InMemory: true})
}

// Close releases the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	return s.db.Close()
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	return nil
}

func versionPrefix(version string) []byte {
	return []byte(indexPrefix + version + "/")
}

func recordsKey(version, technique string) []byte {
	return append(versionPrefix(version), technique...)
}

func validVersion(version string) error {
	if version == "" || strings.Contains(version, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	return nil
}

// Put replaces the stored index of version with index in one transaction.
// With the default 64 MiB memtable that fits tens of thousands of techniques;
// past badger's per-transaction limit Put fails with ErrIndexTooLarge.
func (s *Store) Put(version string, index resolve.Index) error {
	if err := validVersion(version); err != nil {
		return err
	}

	if err := s.checkOpen(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, versionPrefix(version)); err != nil {
			return err
		}

		for _, id := range index.Techniques() {
			records := index[id]
			if len(records) == 0 {
				continue
			}

			data, err := json.Marshal(records)
			if err != nil {
				return fmt.Errorf("failed to encode records of %s: %w", id, err)
			}

			if err := txn.Set(recordsKey(version, id), data); err != nil {
				return fmt.Errorf("failed to store records of %s: %w", id, err)
			}
		}

		return nil
	})
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("%w: version %s, %d techniques", ErrIndexTooLarge, version, len(index))
	}

	return err
}

// deletePrefix removes every key under prefix.
func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}

	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the stored records of technique id under version.
func (s *Store) Get(version, id string) ([]resolve.Record, error) {
	if err := validVersion(version); err != nil {
		return nil, err
	}

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var records []resolve.Record

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordsKey(version, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("technique %s in version %s: %w", id, version, ErrNotFound)
		}

		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &records)
		})
	})

	return records, err
}

// Techniques lists the technique ids stored under version, in lexical order.
func (s *Store) Techniques(version string) ([]string, error) {
	if err := validVersion(version); err != nil {
		return nil, err
	}

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	prefix := versionPrefix(version)

	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}

		return nil
	})

	return ids, err
}

// Load reads back the whole index stored under version.
func (s *Store) Load(version string) (resolve.Index, error) {
	if err := validVersion(version); err != nil {
		return nil, err
	}

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	prefix := versionPrefix(version)
	index := resolve.Index{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])

			err := item.Value(func(val []byte) error {
				var records []resolve.Record
				if err := json.Unmarshal(val, &records); err != nil {
					return fmt.Errorf("failed to decode records of %s: %w", id, err)
				}

				index[id] = records

				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return index, nil
}

// Versions lists the guideline versions with a stored index.
func (s *Store) Versions() ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(indexPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			if version, _, ok := strings.Cut(rest, "/"); ok {
				seen[version] = struct{}{}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}

	sort.Strings(versions)

	return versions, nil
}
