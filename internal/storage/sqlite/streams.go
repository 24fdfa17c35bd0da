package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pixstream/pixstream/internal/models"
	"github.com/pixstream/pixstream/internal/storage"
)

// RegisterStream creates an active stream for the ISPB, enforcing the
// concurrency cap.
//
// The count check and the insert are one INSERT ... SELECT statement, so
// concurrent registrations for the same ISPB cannot jointly exceed the
// cap: SQLite runs the statement atomically and each racer re-evaluates
// the count under the write lock.
func (s *SQLiteStore) RegisterStream(ctx context.Context, ispb, interactionID string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO streams (interaction_id, ispb, status, created_at)
		 SELECT ?, ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM streams WHERE ispb = ? AND status = ?) < ?`,
		interactionID, ispb, models.StreamActive, time.Now().Unix(),
		ispb, models.StreamActive, storage.MaxActiveStreams,
	)
	if err != nil {
		return fmt.Errorf("failed to register stream: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to register stream: %w", err)
	}
	if n == 0 {
		return storage.ErrTooManyStreams
	}
	return nil
}

// GetStream returns the stream registered under the token.
func (s *SQLiteStore) GetStream(ctx context.Context, interactionID string) (*models.Stream, error) {
	st := &models.Stream{}
	err := s.db.QueryRowContext(ctx,
		"SELECT interaction_id, ispb, status, created_at FROM streams WHERE interaction_id = ?",
		interactionID,
	).Scan(&st.InteractionID, &st.Ispb, &st.Status, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	return st, nil
}

// CountActiveStreams reports how many streams are active for the ISPB.
func (s *SQLiteStore) CountActiveStreams(ctx context.Context, ispb string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM streams WHERE ispb = ? AND status = ?",
		ispb, models.StreamActive,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active streams: %w", err)
	}
	return count, nil
}

// FinishStream marks the stream finished. Finishing a finished or
// unknown stream is a no-op, not an error.
func (s *SQLiteStore) FinishStream(ctx context.Context, ispb, interactionID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE streams SET status = ? WHERE ispb = ? AND interaction_id = ? AND status = ?",
		models.StreamFinished, ispb, interactionID, models.StreamActive,
	)
	if err != nil {
		return fmt.Errorf("failed to finish stream: %w", err)
	}
	return nil
}
