// Package store keeps encoded table records in a bbolt file, one bucket per
// table name.
//
// Values are stored exactly as the table encoder writes them, so a record
// written under one version of a table is read back under whichever schema
// the caller supplies, with the usual rules for unknown and retired fields.
package store

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"

	"github.com/sheldonrobinson/libnop/errs"
	"github.com/sheldonrobinson/libnop/internal/options"
	"github.com/sheldonrobinson/libnop/table"
)

// Store is a bbolt database of encoded records. It is safe for concurrent use.
type Store struct {
	db     *bbolt.DB
	logger zerolog.Logger
}

type config struct {
	timeout  time.Duration
	logger   zerolog.Logger
	readOnly bool
	noSync   bool
}

// Option configures Open.
type Option = options.Option[*config]

// WithTimeout bounds how long Open waits for the file lock.
func WithTimeout(d time.Duration) Option {
	return options.New(func(c *config) error {
		if d < 0 {
			return fmt.Errorf("%w: negative timeout %s", errs.ErrInvalidValue, d)
		}
		c.timeout = d

		return nil
	})
}

// WithLogger sets the logger for store and decode debug events.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}

// WithReadOnly opens the file in read-only mode. Writes fail.
func WithReadOnly() Option {
	return options.NoError(func(c *config) {
		c.readOnly = true
	})
}

// WithNoSync skips fsync after each commit. Only meant for tests.
func WithNoSync() Option {
	return options.NoError(func(c *config) {
		c.noSync = true
	})
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	cfg, err := options.Build(config{timeout: 10 * time.Second, logger: zerolog.Nop()}, opts...)
	if err != nil {
		return nil, err
	}

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = cfg.timeout
	bopt.ReadOnly = cfg.readOnly
	bopt.NoSync = cfg.noSync

	db, err := bbolt.Open(path, 0o600, &bopt)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	cfg.logger.Debug().Str("path", path).Bool("read_only", cfg.readOnly).Msg("store opened")

	return &Store{db: db, logger: cfg.logger}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}

	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Put encodes t with schema and stores it under key in the bucket of the
// schema's table.
func Put[T any](s *Store, schema *table.Schema[T], key []byte, t *T) error {
	data, err := table.Marshal(schema, t)
	if err != nil {
		return err
	}

	return s.put(schema.Name(), key, data)
}

// Get loads the record stored under key and decodes it with schema.
// A missing key fails with errs.ErrNotFound.
func Get[T any](s *Store, schema *table.Schema[T], key []byte, opts ...table.Option) (*T, error) {
	var out *T
	err := s.view(schema.Name(), key, func(data []byte) error {
		var err error
		out, err = table.Unmarshal(data, schema, s.decodeOptions(opts)...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ForEach decodes every record of the schema's table in key order.
// Iteration stops at the first error from decoding or from fn.
// The key is only valid during the call to fn.
func ForEach[T any](s *Store, schema *table.Schema[T], fn func(key []byte, t *T) error, opts ...table.Option) error {
	decodeOpts := s.decodeOptions(opts)

	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(schema.Name()))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			t, err := table.Unmarshal(v, schema, decodeOpts...)
			if err != nil {
				return fmt.Errorf("store: %s key %x: %w", schema.Name(), k, err)
			}

			return fn(k, t)
		})
	})
}

// ForEachRaw calls fn with every encoded record of tableName in key order.
// Key and data are only valid during the call to fn.
func (s *Store) ForEachRaw(tableName string, fn func(key, data []byte) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(tableName))
		if b == nil {
			return nil
		}

		return b.ForEach(fn)
	})
}

// PutRecord stores a dynamic record under key in the bucket of its table.
func (s *Store) PutRecord(key []byte, rec *table.Record) error {
	data, err := table.MarshalRecord(rec)
	if err != nil {
		return err
	}

	return s.put(rec.Descriptor().Name(), key, data)
}

// GetRecord loads the record stored under key and decodes it against desc.
func (s *Store) GetRecord(desc *table.Descriptor, key []byte, opts ...table.Option) (*table.Record, error) {
	var out *table.Record
	err := s.view(desc.Name(), key, func(data []byte) error {
		var err error
		out, err = table.UnmarshalRecord(data, desc, s.decodeOptions(opts)...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetRaw returns a copy of the encoded record stored under key.
func (s *Store) GetRaw(tableName string, key []byte) ([]byte, error) {
	var out []byte
	err := s.view(tableName, key, func(data []byte) error {
		out = bytes.Clone(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes the record stored under key. Deleting a missing key is not an error.
func (s *Store) Delete(tableName string, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(tableName))
		if b == nil {
			return nil
		}
		if err := b.Delete(key); err != nil {
			return fmt.Errorf("store: delete %s: %w", tableName, err)
		}
		s.logger.Debug().Str("table", tableName).Hex("key", key).Msg("record deleted")

		return nil
	})
}

// Tables returns the names of the tables that have a bucket, in byte order.
func (s *Store) Tables() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})

	return names, err
}

// Count returns the number of records stored for tableName.
func (s *Store) Count(tableName string) (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket([]byte(tableName)); b != nil {
			n = b.Stats().KeyN
		}

		return nil
	})

	return n, err
}

func (s *Store) put(tableName string, key, data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(tableName))
		if err != nil {
			return err
		}

		return b.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("store: put %s: %w", tableName, err)
	}
	s.logger.Debug().Str("table", tableName).Hex("key", key).Int("size", len(data)).Msg("record stored")

	return nil
}

// view runs fn on the stored bytes of key. The bytes are only valid during fn.
func (s *Store) view(tableName string, key []byte, fn func(data []byte) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(tableName))
		if b == nil {
			return fmt.Errorf("%w: %s key %x", errs.ErrNotFound, tableName, key)
		}
		data := b.Get(key)
		if data == nil {
			return fmt.Errorf("%w: %s key %x", errs.ErrNotFound, tableName, key)
		}

		return fn(data)
	})
}

func (s *Store) decodeOptions(opts []table.Option) []table.Option {
	return append([]table.Option{table.WithLogger(s.logger)}, opts...)
}
