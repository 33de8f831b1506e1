package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/push"
)

// Push event types consumed by the actor's progress UI.
const (
	pushOperationStarted   = "operation_started"
	pushOperationCompleted = "operation_completed"
)

// LifecycleNotifier emits start/completion events for a bulk operation to
// the initiating actor's live connection. Emission is fire-and-forget: an
// offline actor just misses the live update.
type LifecycleNotifier struct {
	pusher push.Pusher
	logger *zap.Logger
}

// NewLifecycleNotifier constructs the notifier.
func NewLifecycleNotifier(pusher push.Pusher, logger *zap.Logger) *LifecycleNotifier {
	return &LifecycleNotifier{pusher: pusher, logger: logger}
}

// OperationStartedPayload is pushed before any write happens.
type OperationStartedPayload struct {
	OperationID    string                   `json:"operationId"`
	Kind           domain.BulkOperationKind `json:"kind"`
	RequestedCount int                      `json:"requestedCount"`
}

// OperationCompletedPayload is pushed after the operation finishes, success
// or failure.
type OperationCompletedPayload struct {
	OperationID    string                   `json:"operationId"`
	Kind           domain.BulkOperationKind `json:"kind"`
	Success        bool                     `json:"success"`
	Message        string                   `json:"message"`
	ProcessedCount int                      `json:"processedCount"`
	FailedCount    int                      `json:"failedCount"`
}

// OperationStarted announces operation identity and size for progress UI.
func (n *LifecycleNotifier) OperationStarted(ctx context.Context, op domain.BulkOperation) {
	delivered := n.pusher.TryDeliver(ctx, op.ActorID, push.Event{
		Type:      pushOperationStarted,
		Timestamp: time.Now(),
		Payload: OperationStartedPayload{
			OperationID:    op.ID,
			Kind:           op.Kind,
			RequestedCount: op.RequestedCount,
		},
	})
	n.logger.Debug("operation started",
		zap.String("operation_id", op.ID),
		zap.String("kind", string(op.Kind)),
		zap.Int("requested", op.RequestedCount),
		zap.Bool("live_delivered", delivered),
	)
}

// OperationCompleted reports the final tally to the actor. It fires on
// every exit path so the UI is never stuck on "started".
func (n *LifecycleNotifier) OperationCompleted(ctx context.Context, op domain.BulkOperation, success bool, message string, processed, failed int) {
	n.pusher.TryDeliver(ctx, op.ActorID, push.Event{
		Type:      pushOperationCompleted,
		Timestamp: time.Now(),
		Payload: OperationCompletedPayload{
			OperationID:    op.ID,
			Kind:           op.Kind,
			Success:        success,
			Message:        message,
			ProcessedCount: processed,
			FailedCount:    failed,
		},
	})
	n.logger.Info("operation completed",
		zap.String("operation_id", op.ID),
		zap.String("kind", string(op.Kind)),
		zap.Bool("success", success),
		zap.Int("processed", processed),
		zap.Int("failed", failed),
	)
}
