package service

import (
	"context"
	"log/slog"

	"github.com/pixstream/pixstream/internal/generator"
	"github.com/pixstream/pixstream/internal/models"
	"github.com/pixstream/pixstream/internal/storage"
)

// ProducerService generates and inserts random PIX messages. Purely
// additive: it never touches claims or delivery state.
type ProducerService struct {
	store storage.Store
}

// NewProducerService creates a new ProducerService with the given storage backend.
func NewProducerService(store storage.Store) *ProducerService {
	return &ProducerService{store: store}
}

// Insert generates count random messages for the ISPB and persists them
// in one transaction, returning the produced batch.
func (p *ProducerService) Insert(ctx context.Context, ispb string, count int) ([]models.StoredMessage, error) {
	msgs := generator.RandomMessages(ispb, count)
	if err := p.store.InsertMessages(ctx, msgs); err != nil {
		slog.Error("Insert failed", "ispb", ispb, "count", count, "error", err)
		return nil, err
	}
	slog.Info("Messages inserted", "ispb", ispb, "count", count)
	return msgs, nil
}
