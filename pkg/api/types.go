package api

import (
	"github.com/segmentio/ksuid"
	"github.com/ssargent/databin/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StreamResponse describes a stored stream
type StreamResponse struct {
	ID       string `json:"id"`
	Size     int    `json:"size"`
	Records  int    `json:"records,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind           string
	Port           int
	APIKey         string // Empty disables authentication
	MaxUploadBytes int64
	Strict         bool     // Reject uploads with unbalanced containers
	AllowedOrigins []string // CORS origins, all when empty
}

// StreamStore defines the blob operations the server needs
type StreamStore interface {
	Create(data []byte) (*ksuid.KSUID, error)
	Read(id *ksuid.KSUID) ([]byte, error)
	Delete(id *ksuid.KSUID) error
	List() ([]storage.StreamInfo, error)
}

var _ StreamStore = (*storage.DefaultStorage)(nil)
