package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pixstream/pixstream/internal/generator"
	"github.com/pixstream/pixstream/internal/models"
	"github.com/pixstream/pixstream/internal/storage"
)

// waitingStreams tracks how many long-poll loops are currently suspended
// waiting for messages.
var waitingStreams = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "pixstream",
	Name:      "waiting_streams",
	Help:      "Number of long-poll requests currently waiting for messages.",
})

// Config holds the long-poll timings. Both are total wall-clock values;
// the loop gives up after MaxWait and suspends PollInterval between
// claim attempts.
type Config struct {
	MaxWait      time.Duration
	PollInterval time.Duration
}

// DefaultConfig returns the production long-poll timings.
func DefaultConfig() Config {
	return Config{
		MaxWait:      8 * time.Second,
		PollInterval: 5 * time.Second,
	}
}

// Result is the outcome of one long-poll request. Messages is nil when
// the wait timed out; NextToken always carries the continuation token the
// client should call back with.
type Result struct {
	Messages  []models.StoredMessage
	NextToken string
}

// StreamService drives stream admission, exclusive claiming, delivery
// logging and the bounded long-poll loop.
type StreamService struct {
	store storage.Store
	cfg   Config
}

// NewStreamService creates a new StreamService with the given storage
// backend and long-poll timings.
func NewStreamService(store storage.Store, cfg Config) *StreamService {
	return &StreamService{store: store, cfg: cfg}
}

// Start begins a new stream for the ISPB and long-polls for up to limit
// messages. Returns storage.ErrTooManyStreams when the ISPB already has
// the maximum number of active streams.
//
// The registered token doubles as the stream's claim tag. On delivery a
// fresh checkpoint token is minted and returned; on timeout the
// registered token is returned so the client can retry from the start of
// the lineage.
func (s *StreamService) Start(ctx context.Context, ispb string, limit int) (*Result, error) {
	token := generator.NewID()
	if err := s.store.RegisterStream(ctx, ispb, token); err != nil {
		if errors.Is(err, storage.ErrTooManyStreams) {
			slog.Warn("Stream admission refused", "ispb", ispb)
			return nil, err
		}
		slog.Error("RegisterStream failed", "ispb", ispb, "error", err)
		return nil, err
	}
	slog.Info("Stream registered", "ispb", ispb, "interaction_id", token)

	res, err := s.poll(ctx, func(ctx context.Context) (*Result, error) {
		msgs, err := s.store.ClaimMessages(ctx, ispb, limit, token)
		if err != nil {
			return nil, err
		}
		if len(msgs) == 0 {
			return nil, nil
		}
		next, err := s.logDelivery(ctx, ispb, token, nil, msgs)
		if err != nil {
			return nil, err
		}
		return &Result{Messages: msgs, NextToken: next}, nil
	})
	if err != nil {
		// The client never received the token, so no DELETE can ever
		// free this slot; drop the session before surfacing the error.
		if finErr := s.store.FinishStream(ctx, ispb, token); finErr != nil {
			slog.Error("FinishStream failed", "ispb", ispb, "interaction_id", token, "error", finErr)
		}
		slog.Error("Stream start failed", "ispb", ispb, "error", err)
		return nil, err
	}
	if res == nil {
		return &Result{NextToken: token}, nil
	}
	return res, nil
}

// Continue resumes a lineage from an existing checkpoint token and
// long-polls for up to limit undelivered messages. On timeout the
// caller's own token is returned unchanged.
func (s *StreamService) Continue(ctx context.Context, ispb, token string, limit int) (*Result, error) {
	// Unknown tokens start an empty lineage rooted at the token itself,
	// so a client may continue from a token this process never minted.
	streamID := token
	var delivered []string
	prior, err := s.store.GetInteraction(ctx, token)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("GetInteraction failed", "ispb", ispb, "interaction_id", token, "error", err)
		return nil, err
	}
	if prior != nil {
		streamID = prior.StreamID
		delivered = prior.MessageIDs
	}

	res, err := s.poll(ctx, func(ctx context.Context) (*Result, error) {
		msgs, err := s.store.ResumeMessages(ctx, ispb, limit, streamID, delivered)
		if err != nil {
			return nil, err
		}
		if len(msgs) == 0 {
			return nil, nil
		}
		next, err := s.logDelivery(ctx, ispb, streamID, delivered, msgs)
		if err != nil {
			return nil, err
		}
		return &Result{Messages: msgs, NextToken: next}, nil
	})
	if err != nil {
		slog.Error("Stream continue failed", "ispb", ispb, "interaction_id", token, "error", err)
		return nil, err
	}
	if res == nil {
		return &Result{NextToken: token}, nil
	}
	return res, nil
}

// Finish finalizes the stream owning the token and releases every claim
// it holds. Idempotent: finishing an already finished or unknown stream
// succeeds.
func (s *StreamService) Finish(ctx context.Context, ispb, token string) error {
	// The token may be any checkpoint of the lineage; resolve the root.
	streamID := token
	if in, err := s.store.GetInteraction(ctx, token); err == nil {
		streamID = in.StreamID
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Error("GetInteraction failed", "ispb", ispb, "interaction_id", token, "error", err)
		return err
	}

	if err := s.store.FinishStream(ctx, ispb, streamID); err != nil {
		slog.Error("FinishStream failed", "ispb", ispb, "stream_id", streamID, "error", err)
		return err
	}
	if err := s.store.ReleaseClaims(ctx, streamID); err != nil {
		slog.Error("ReleaseClaims failed", "ispb", ispb, "stream_id", streamID, "error", err)
		return err
	}
	slog.Info("Stream finished", "ispb", ispb, "stream_id", streamID)
	return nil
}

// logDelivery appends a checkpoint extending the lineage with the ids of
// msgs and returns the new token. If the append fails the fresh claims
// are released so no message is left orphaned on an undelivered claim.
func (s *StreamService) logDelivery(ctx context.Context, ispb, streamID string, delivered []string, msgs []models.StoredMessage) (string, error) {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.EndToEndID
	}

	cumulative := make([]string, 0, len(delivered)+len(ids))
	cumulative = append(cumulative, delivered...)
	cumulative = append(cumulative, ids...)

	next := generator.NewID()
	err := s.store.AppendInteraction(ctx, &models.Interaction{
		InteractionID: next,
		Ispb:          ispb,
		StreamID:      streamID,
		MessageIDs:    cumulative,
	})
	if err != nil {
		if relErr := s.store.ReleaseMessages(ctx, ids); relErr != nil {
			slog.Error("Claim rollback failed", "ispb", ispb, "stream_id", streamID, "error", relErr)
		}
		return "", err
	}
	slog.Debug("Delivery logged",
		"ispb", ispb,
		"stream_id", streamID,
		"interaction_id", next,
		"delivered", len(ids),
	)
	return next, nil
}

// poll runs attempt until it yields a result or an error, suspending
// PollInterval between empty attempts and giving up after MaxWait. The
// suspend is a select, never a blocking sleep, so other requests keep
// being served. A nil, nil return means the wait timed out.
//
// Client disconnects (ctx cancellation) end the wait early and are
// reported as a timeout; the stream stays active and its claims are
// recovered through Finish or a later Continue.
func (s *StreamService) poll(ctx context.Context, attempt func(context.Context) (*Result, error)) (*Result, error) {
	deadline := time.NewTimer(s.cfg.MaxWait)
	defer deadline.Stop()

	waitingStreams.Inc()
	defer waitingStreams.Dec()

	for {
		res, err := attempt(ctx)
		if err != nil || res != nil {
			return res, err
		}

		wait := time.NewTimer(s.cfg.PollInterval)
		select {
		case <-wait.C:
		case <-deadline.C:
			wait.Stop()
			return nil, nil
		case <-ctx.Done():
			wait.Stop()
			return nil, nil
		}
	}
}
