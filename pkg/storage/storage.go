// Package storage keeps encoded databin streams in a pebble database, one
// blob per stream, keyed by KSUID.
package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no blob exists for an id
var ErrNotFound = errors.New("storage: stream not found")

// DefaultStorage is a pebble backed blob store
type DefaultStorage struct {
	db *pebble.DB
}

// StreamInfo describes one stored stream
type StreamInfo struct {
	ID   ksuid.KSUID
	Size int
}

func NewDefaultStorage(path string) (*DefaultStorage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &DefaultStorage{db: db}, nil
}

func (s *DefaultStorage) Create(data []byte) (*ksuid.KSUID, error) {
	id := ksuid.New()
	key := id.Bytes()
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		return nil, err
	}

	return &id, nil
}

func (s *DefaultStorage) Read(id *ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer closer.Close()

	// data is only valid until closer.Close
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *DefaultStorage) Update(id *ksuid.KSUID, data []byte) error {
	return s.db.Set(id.Bytes(), data, pebble.Sync)
}

func (s *DefaultStorage) Delete(id *ksuid.KSUID) error {
	if _, err := s.Read(id); err != nil {
		return err
	}
	return s.db.Delete(id.Bytes(), pebble.Sync)
}

// List returns every stored stream in id (and so creation time) order
func (s *DefaultStorage) List() ([]StreamInfo, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var infos []StreamInfo
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			// not one of ours
			continue
		}
		infos = append(infos, StreamInfo{ID: id, Size: len(iter.Value())})
	}

	return infos, iter.Error()
}

func (s *DefaultStorage) Close() error {
	return s.db.Close()
}

// ParseID parses the string form of a stream id
func ParseID(raw string) (*ksuid.KSUID, error) {
	id, err := ksuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid stream id %q: %w", raw, err)
	}
	return &id, nil
}
