package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/databin/pkg/codec"
	"github.com/ssargent/databin/pkg/dump"
	"github.com/ssargent/databin/pkg/storage"
	"github.com/ssargent/databin/pkg/stream"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handlePut stores the request body as a new stream after checking that it
// decodes cleanly from start to end
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes))
	if err != nil {
		s.metrics.RecordStreamOperation("put", false, time.Since(start))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Stream too large", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, fmt.Sprintf("Failed to read body: %v", err), http.StatusBadRequest)
		return
	}

	stats, err := s.validate(data)
	if err != nil {
		s.metrics.RecordStreamOperation("put", false, time.Since(start))
		sendError(w, fmt.Sprintf("Invalid stream: %v", err), http.StatusUnprocessableEntity)
		return
	}

	id, err := s.store.Create(data)
	if err != nil {
		s.metrics.RecordStreamOperation("put", false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to store stream: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordStreamOperation("put", true, time.Since(start))
	s.logger.Debug().Str("id", id.String()).Int("records", stats.Records).Msg("stream stored")
	sendJSON(w, http.StatusCreated, StreamResponse{
		ID:       id.String(),
		Size:     len(data),
		Records:  stats.Records,
		MaxDepth: stats.MaxDepth,
	})
}

// validate decodes every record of data without printing anything
func (s *Server) validate(data []byte) (dump.Stats, error) {
	opts := s.dumpOpts
	opts.Strict = s.config.Strict

	d := dump.New(io.Discard, opts)
	err := d.Dump(codec.New(stream.NewBufferStream(data), codec.WithObserver(s.metrics)))
	return d.Stats(), err
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list streams: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.SetStreamsStored(len(infos))
	streams := make([]StreamResponse, 0, len(infos))
	for _, info := range infos {
		streams = append(streams, StreamResponse{ID: info.ID.String(), Size: info.Size})
	}
	sendSuccess(w, map[string]interface{}{"streams": streams})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := s.streamID(w, r)
	if !ok {
		return
	}

	data, err := s.store.Read(id)
	if err != nil {
		s.metrics.RecordStreamOperation("get", false, time.Since(start))
		s.sendStoreError(w, err)
		return
	}

	s.metrics.RecordStreamOperation("get", true, time.Since(start))
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write response")
	}
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := s.streamID(w, r)
	if !ok {
		return
	}

	src, err := stream.NewStoreReader(s.store, id)
	if err != nil {
		s.metrics.RecordStreamOperation("dump", false, time.Since(start))
		s.sendStoreError(w, err)
		return
	}
	defer src.Close()

	// Render fully before answering so a decode error can still become a 422
	var out bytes.Buffer
	if err := dump.New(&out, s.dumpOpts).Dump(codec.New(src, codec.WithObserver(s.metrics))); err != nil {
		s.metrics.RecordStreamOperation("dump", false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to decode stream: %v", err), http.StatusUnprocessableEntity)
		return
	}

	s.metrics.RecordStreamOperation("dump", true, time.Since(start))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := out.WriteTo(w); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write response")
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := s.streamID(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(id); err != nil {
		s.metrics.RecordStreamOperation("delete", false, time.Since(start))
		s.sendStoreError(w, err)
		return
	}

	s.metrics.RecordStreamOperation("delete", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": "Stream deleted successfully"})
}

func (s *Server) streamID(w http.ResponseWriter, r *http.Request) (*ksuid.KSUID, bool) {
	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return id, true
}

func (s *Server) sendStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, "Stream not found", http.StatusNotFound)
		return
	}
	sendError(w, fmt.Sprintf("Storage error: %v", err), http.StatusInternalServerError)
}
