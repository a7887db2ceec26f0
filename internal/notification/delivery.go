package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/task"
)

// TaskTypeDelivery identifies notification delivery tasks.
const TaskTypeDelivery = "notification_delivery"

// Sink delivers a single notification. Implementations need not be
// reliable; a failed delivery is retried by the worker pool and then dropped.
type Sink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// LogSink writes notifications to the structured log.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs at info level.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "notification_log_sink")}
}

// Deliver implements Sink.
func (s *LogSink) Deliver(ctx context.Context, n domain.Notification) error {
	s.logger.InfoContext(ctx, "notification delivered",
		"recipient_id", n.RecipientID,
		"title", n.Title,
		"link", n.Link)
	return nil
}

// DeliveryTask delivers one notification through a sink.
type DeliveryTask struct {
	id           uuid.UUID
	notification domain.Notification
	sink         Sink
}

var _ task.Task = (*DeliveryTask)(nil)

// NewDeliveryTask creates a task delivering n to sink.
func NewDeliveryTask(n domain.Notification, sink Sink) *DeliveryTask {
	return &DeliveryTask{id: uuid.New(), notification: n, sink: sink}
}

// ID implements task.Task.
func (t *DeliveryTask) ID() uuid.UUID { return t.id }

// Type implements task.Task.
func (t *DeliveryTask) Type() string { return TaskTypeDelivery }

// Payload implements task.Task.
func (t *DeliveryTask) Payload() []byte {
	b, _ := json.Marshal(t.notification)
	return b
}

// Notification returns the message the task delivers.
func (t *DeliveryTask) Notification() domain.Notification { return t.notification }

// Execute implements task.Task.
func (t *DeliveryTask) Execute(ctx context.Context) error {
	return t.sink.Deliver(ctx, t.notification)
}
