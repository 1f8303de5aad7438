// Package manifest persists what a previous run converted so unchanged
// sources can be skipped.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rgonek/dokuwiki-md-converter/internal/logging"
)

const bucketSources = "sources"

// ErrNoRecord is returned by Get when a source has never been recorded.
var ErrNoRecord = errors.New("no manifest record")

// Record describes the last successful conversion of one source file.
type Record struct {
	Checksum    string    `json:"checksum"`
	Output      string    `json:"output"`
	RunID       string    `json:"runId"`
	Notices     int       `json:"notices"`
	ConvertedAt time.Time `json:"convertedAt"`
}

// Store is a bbolt-backed manifest. It is safe for concurrent use.
type Store struct {
	db     *bolt.DB
	logger logging.Logger
}

// Open opens or creates the manifest database at path.
func Open(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NoOp()
	}

	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSources))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize manifest %s: %w", path, err)
	}

	logger.Debug("manifest.opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the record for source, or ErrNoRecord.
func (s *Store) Get(source string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSources)).Get([]byte(source))
		if v == nil {
			return ErrNoRecord
		}
		return json.Unmarshal(v, &rec)
	})
	return rec, err
}

// Put stores the record for source, replacing any previous one.
func (s *Store) Put(source string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode manifest record for %s: %w", source, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSources)).Put([]byte(source), data)
	})
}

// Delete removes the record for source.
func (s *Store) Delete(source string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSources)).Delete([]byte(source))
	})
}

// Unchanged reports whether source was last converted from content with the
// given checksum.
func (s *Store) Unchanged(source, checksum string) (Record, bool, error) {
	rec, err := s.Get(source)
	if errors.Is(err, ErrNoRecord) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	if rec.Checksum != checksum {
		s.logger.Trace("manifest.changed", "source", source)
		return rec, false, nil
	}
	return rec, true, nil
}

// Sources lists every recorded source in key order.
func (s *Store) Sources() ([]string, error) {
	var sources []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSources)).ForEach(func(k, _ []byte) error {
			sources = append(sources, string(k))
			return nil
		})
	})
	return sources, err
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
