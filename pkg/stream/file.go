package stream

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// FileStream provides sequential buffered access to a file. A FileStream is
// either a reader or a writer, never both.
type FileStream struct {
	file   *os.File
	reader *bufio.Reader
	writer *bufio.Writer
	config FileStreamConfig
	owned  bool  // Close closes file
	offset int64 // Bytes consumed or produced so far
	closed bool
}

// NewFileReader opens the file at config.FilePath read-only
func NewFileReader(config FileStreamConfig) (*FileStream, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	s := newFileStream(file, config)
	s.reader = newReader(file, config.BufferSize)
	return s, nil
}

// NewFileWriter creates (or truncates) the file at config.FilePath for writing
func NewFileWriter(config FileStreamConfig) (*FileStream, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	s := newFileStream(file, config)
	s.writer = newWriter(file, config.BufferSize)
	return s, nil
}

// NewReadStream wraps an already open reader. Close does not close r.
func NewReadStream(r io.Reader, bufferSize int) *FileStream {
	return &FileStream{reader: newReader(r, bufferSize)}
}

// NewWriteStream wraps an already open writer. Close flushes but does not
// close w.
func NewWriteStream(w io.Writer, bufferSize int) *FileStream {
	return &FileStream{writer: newWriter(w, bufferSize)}
}

func newFileStream(file *os.File, config FileStreamConfig) *FileStream {
	return &FileStream{
		file:   file,
		config: config,
		owned:  true,
	}
}

func newReader(r io.Reader, size int) *bufio.Reader {
	if size > 0 {
		return bufio.NewReaderSize(r, size)
	}
	return bufio.NewReader(r)
}

func newWriter(w io.Writer, size int) *bufio.Writer {
	if size > 0 {
		return bufio.NewWriterSize(w, size)
	}
	return bufio.NewWriter(w)
}

// ReadFull fills p from the file
func (s *FileStream) ReadFull(p []byte) error {
	if err := s.readable(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	n, err := io.ReadFull(s.reader, p)
	s.offset += int64(n)
	return readError(n, len(p), err)
}

// Skip discards the next n bytes
func (s *FileStream) Skip(n int) error {
	if err := s.readable(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	// Discard works on pipes and sockets too, so no Seek here.
	discarded, err := s.reader.Discard(n)
	s.offset += int64(discarded)
	return readError(discarded, n, err)
}

// WriteFull writes p to the buffered writer
func (s *FileStream) WriteFull(p []byte) error {
	if err := s.writable(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	n, err := s.writer.Write(p)
	s.offset += int64(n)
	return writeError(n, len(p), err)
}

// Flush pushes buffered writes to the file
func (s *FileStream) Flush() error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return fault(err)
	}
	return nil
}

// Offset returns the number of bytes read or written so far
func (s *FileStream) Offset() int64 {
	return s.offset
}

// Path returns the file path, empty for wrapped readers and writers
func (s *FileStream) Path() string {
	return s.config.FilePath
}

// Close flushes pending writes and closes the file if the stream opened it
func (s *FileStream) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	var err error
	if s.writer != nil {
		if flushErr := s.writer.Flush(); flushErr != nil {
			err = fault(flushErr)
		}
		if err == nil && s.config.Sync && s.file != nil {
			if syncErr := s.file.Sync(); syncErr != nil {
				err = fault(syncErr)
			}
		}
	}

	if s.owned && s.file != nil {
		if closeErr := s.file.Close(); closeErr != nil && err == nil {
			err = fault(closeErr)
		}
	}

	return err
}

func (s *FileStream) readable() error {
	if s.closed {
		return ErrClosed
	}
	if s.reader == nil {
		return ErrNotReadable
	}
	return nil
}

func (s *FileStream) writable() error {
	if s.closed {
		return ErrClosed
	}
	if s.writer == nil {
		return ErrNotWritable
	}
	return nil
}
