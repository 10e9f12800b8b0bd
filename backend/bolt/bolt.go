// Package bolt is a file-backed backend on top of bbolt. All entries live in
// one bucket; keys iterate in byte order, which makes Key(i) stable between
// writes. TTLs are not supported and are ignored.
package bolt

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/unkn0wn-root/encstore/backend"
)

// DefaultBucket holds entries when Config.Bucket is empty.
var DefaultBucket = []byte("encstore")

type Config struct {
	Path   string
	Bucket string
}

// Store provides BBolt-based storage for encstore
type Store struct {
	db     *bolt.DB
	bucket []byte
}

var (
	_ backend.Backend = (*Store)(nil)
	_ backend.Lister  = (*Store)(nil)
	_ backend.Indexer = (*Store)(nil)
)

// Open opens or creates the database and its bucket
func Open(cfg Config) (*Store, error) {
	db, err := bolt.Open(cfg.Path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bucket := DefaultBucket
	if cfg.Bucket != "" {
		bucket = []byte(cfg.Bucket)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: bucket}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", s.bucket)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		// string() copies; the slice is only valid during the transaction
		value, found = string(v), true
		return nil
	})
	return value, found, err
}

func (s *Store) Set(_ context.Context, key, value string, _ backend.SetOptions) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), []byte(value))
	})
}

func (s *Store) Remove(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Clear drops and recreates the bucket
func (s *Store) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
}

func (s *Store) Len(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

func (s *Store) Key(_ context.Context, index int) (string, bool, error) {
	if index < 0 {
		return "", false, nil
	}
	var (
		key   string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		i := 0
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if i == index {
				key, found = string(k), true
				return nil
			}
			i++
		}
		return nil
	})
	return key, found, err
}

// Path returns the database file path
func (s *Store) Path() string { return s.db.Path() }

// Close closes the database
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
