package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/events"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/task"
)

// BusinessLister supplies the candidates for radius fanout.
type BusinessLister interface {
	ListBusinesses(ctx context.Context) ([]*domain.User, error)
}

// Handler turns lifecycle events into queued delivery tasks.
type Handler struct {
	businesses BusinessLister
	queue      task.TaskQueueWriter
	sink       Sink
	radiusKm   float64
	logger     *slog.Logger
}

var _ events.EventHandler = (*Handler)(nil)

// NewHandler creates a Handler. radiusKm bounds request-created fanout.
func NewHandler(businesses BusinessLister, queue task.TaskQueueWriter, sink Sink, radiusKm float64, logger *slog.Logger) *Handler {
	return &Handler{
		businesses: businesses,
		queue:      queue,
		sink:       sink,
		radiusKm:   radiusKm,
		logger:     logger.With("component", "notification_handler"),
	}
}

// HandleEvent derives the notifications for event and enqueues one delivery
// task per recipient. Events without a notification rule are ignored.
func (h *Handler) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger).With("event_id", event.ID, "event_type", event.Type)

	notifications, err := h.derive(ctx, event)
	if err != nil {
		log.Error("failed to derive notifications", "error", err)
		return err
	}

	var firstErr error
	for _, n := range notifications {
		if err := h.queue.Enqueue(NewDeliveryTask(n, h.sink)); err != nil {
			log.Warn("dropping notification", "recipient_id", n.RecipientID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	log.Debug("notifications queued", "count", len(notifications))
	return firstErr
}

func (h *Handler) derive(ctx context.Context, event *events.Event) ([]domain.Notification, error) {
	switch event.Type {
	case events.TypeRequestCreated:
		var p events.RequestCreated
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		businesses, err := h.businesses.ListBusinesses(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list businesses: %w", err)
		}
		return ForRequestCreated(p, businesses, h.radiusKm), nil

	case events.TypeOfferSubmitted:
		var p events.OfferSubmitted
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return ForOfferSubmitted(p), nil

	case events.TypeOfferAccepted:
		var p events.OfferAccepted
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return ForOfferAccepted(p), nil

	case events.TypeCompletionUploaded:
		var p events.CompletionUploaded
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return ForCompletionUploaded(p), nil

	case events.TypeReviewCreated:
		var p events.ReviewCreated
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return ForReviewCreated(p), nil
	}

	return nil, nil
}
