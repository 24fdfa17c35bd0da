// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/pixstream/pixstream/internal/models"
)

// MaxActiveStreams is the concurrency cap: the number of streams that may
// be active for one ISPB at the same time.
const MaxActiveStreams = 6

var (
	// ErrTooManyStreams is returned by RegisterStream when the ISPB
	// already has MaxActiveStreams active streams.
	ErrTooManyStreams = errors.New("too many active streams for ispb")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// Store defines the interface for message, stream and interaction
// persistence. This abstraction allows swapping storage backends (SQLite,
// PostgreSQL, etc.) without changing the service layer.
//
// Every mutating operation is atomic with respect to concurrent callers:
// claim exclusivity and the stream cap are enforced here, not by
// in-process locks, so multiple service instances can share one store.
type Store interface {
	// InsertMessages persists a batch of messages in one transaction.
	InsertMessages(ctx context.Context, msgs []models.StoredMessage) error

	// ListMessages returns every message addressed to the ISPB,
	// oldest first.
	ListMessages(ctx context.Context, ispb string) ([]models.StoredMessage, error)

	// ClaimMessages atomically tags up to limit unclaimed messages for
	// the ISPB with streamID and returns them, oldest first. Concurrent
	// calls never return overlapping sets.
	ClaimMessages(ctx context.Context, ispb string, limit int, streamID string) ([]models.StoredMessage, error)

	// ResumeMessages atomically tags up to limit messages for the ISPB
	// that are unclaimed or already held by streamID, excluding the ids
	// in delivered, and returns them oldest first. This is the
	// continuation-path variant of ClaimMessages.
	ResumeMessages(ctx context.Context, ispb string, limit int, streamID string, delivered []string) ([]models.StoredMessage, error)

	// ReleaseClaims clears the claim tag on every message held by
	// streamID, making them claimable again.
	ReleaseClaims(ctx context.Context, streamID string) error

	// ReleaseMessages clears the claim tag on exactly the given
	// messages. Used to roll back a claim whose checkpoint write failed.
	ReleaseMessages(ctx context.Context, ids []string) error

	// RegisterStream creates an active stream, failing with
	// ErrTooManyStreams when the ISPB is at the cap. The count check and
	// the insert are a single atomic operation.
	RegisterStream(ctx context.Context, ispb, interactionID string) error

	// GetStream returns the stream registered under the token, or
	// ErrNotFound for an unknown token.
	GetStream(ctx context.Context, interactionID string) (*models.Stream, error)

	// CountActiveStreams reports how many streams are active for the
	// ISPB.
	CountActiveStreams(ctx context.Context, ispb string) (int, error)

	// FinishStream marks the stream finished. Idempotent: finishing a
	// finished or unknown stream is not an error.
	FinishStream(ctx context.Context, ispb, interactionID string) error

	// GetInteraction returns the checkpoint written under the token, or
	// ErrNotFound for an unknown token.
	GetInteraction(ctx context.Context, interactionID string) (*models.Interaction, error)

	// AppendInteraction writes a new immutable checkpoint. The caller
	// supplies the full cumulative id set; existing checkpoints are
	// never modified.
	AppendInteraction(ctx context.Context, in *models.Interaction) error

	// Close releases any resources held by the store.
	Close() error
}
