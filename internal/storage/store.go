package storage

import (
	"context"
	"errors"

	"github.com/mocapboston/onboarding/internal/models"
)

// ErrSessionNotFound is returned when no document exists for a session id
var ErrSessionNotFound = errors.New("session not found")

// Store defines the interface for session document operations.
// Ids passed in are already normalized with models.NormalizeSessionID.
type Store interface {
	// GetSession returns ErrSessionNotFound when the document is absent;
	// any other error means the backend could not answer.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// MergeSession writes the patch fields onto an existing document and
	// returns once the write is durable. It never creates a document.
	MergeSession(ctx context.Context, id string, patch models.SessionPatch) error

	// ListGallery returns processed, gallery-visible sessions, newest first
	ListGallery(ctx context.Context, limit int) ([]*models.Session, error)

	Ping(ctx context.Context) error
	Close() error
}

// Driver names accepted by New
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
)
