package stream

import (
	"github.com/segmentio/ksuid"
)

// BlobStore persists whole encoded streams under generated ids
type BlobStore interface {
	Create(data []byte) (*ksuid.KSUID, error)
	Read(id *ksuid.KSUID) ([]byte, error)
}

// StoreStream is a Stream backed by a BlobStore. A reader loads the blob
// once when opened; a writer buffers in memory and commits a new blob on
// Close.
type StoreStream struct {
	*BufferStream
	store   BlobStore
	id      *ksuid.KSUID
	writing bool
}

// NewStoreReader opens the blob stored under id for reading
func NewStoreReader(store BlobStore, id *ksuid.KSUID) (*StoreStream, error) {
	data, err := store.Read(id)
	if err != nil {
		return nil, err
	}

	return &StoreStream{
		BufferStream: NewBufferStream(data),
		store:        store,
		id:           id,
	}, nil
}

// NewStoreWriter returns a stream whose contents become a new blob on Close
func NewStoreWriter(store BlobStore) *StoreStream {
	return &StoreStream{
		BufferStream: NewBufferStream(nil),
		store:        store,
		writing:      true,
	}
}

// ReadFull reads from a loaded blob
func (s *StoreStream) ReadFull(p []byte) error {
	if s.writing {
		return ErrNotReadable
	}
	return s.BufferStream.ReadFull(p)
}

// Skip skips within a loaded blob
func (s *StoreStream) Skip(n int) error {
	if s.writing {
		return ErrNotReadable
	}
	return s.BufferStream.Skip(n)
}

// WriteFull buffers p until Close
func (s *StoreStream) WriteFull(p []byte) error {
	if !s.writing {
		return ErrNotWritable
	}
	return s.BufferStream.WriteFull(p)
}

// ID returns the blob id. For writers it is nil until Close succeeds.
func (s *StoreStream) ID() *ksuid.KSUID {
	return s.id
}

// Close commits buffered writes as a new blob
func (s *StoreStream) Close() error {
	if err := s.BufferStream.Close(); err != nil {
		return err
	}
	if !s.writing {
		return nil
	}

	id, err := s.store.Create(s.Bytes())
	if err != nil {
		return fault(err)
	}
	s.id = id
	return nil
}
