package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pixstream/pixstream/internal/models"
	"github.com/pixstream/pixstream/internal/storage"
)

// GetInteraction returns the checkpoint written under the token.
func (s *SQLiteStore) GetInteraction(ctx context.Context, interactionID string) (*models.Interaction, error) {
	in := &models.Interaction{}
	var rawIDs string
	err := s.db.QueryRowContext(ctx,
		`SELECT interaction_id, ispb, stream_id, message_ids, created_at
		 FROM interaction_logs WHERE interaction_id = ?`,
		interactionID,
	).Scan(&in.InteractionID, &in.Ispb, &in.StreamID, &rawIDs, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}

	if err := json.Unmarshal([]byte(rawIDs), &in.MessageIDs); err != nil {
		return nil, fmt.Errorf("failed to decode interaction message ids: %w", err)
	}
	return in, nil
}

// AppendInteraction writes a new immutable checkpoint. The primary key on
// interaction_id makes token reuse impossible.
func (s *SQLiteStore) AppendInteraction(ctx context.Context, in *models.Interaction) error {
	if in.CreatedAt == 0 {
		in.CreatedAt = time.Now().Unix()
	}
	ids := in.MessageIDs
	if ids == nil {
		ids = []string{}
	}
	rawIDs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode interaction message ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interaction_logs (interaction_id, ispb, stream_id, message_ids, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		in.InteractionID, in.Ispb, in.StreamID, string(rawIDs), in.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}
	return nil
}
