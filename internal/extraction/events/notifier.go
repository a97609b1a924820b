// Package events announces extraction outcomes on the message bus.
// Publishing is best-effort: a failed publish is logged and never reaches the caller.
// Batch scoped events carry the batch ID as their correlation ID.
package events

import (
	"context"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/pkg/logger"
	"github.com/formflow/formflow-backend/pkg/messaging"
)

// Notifier turns domain outcomes into messaging events
type Notifier struct {
	publisher messaging.EventPublisher
	log       *logger.Logger
}

// NewNotifier creates a notifier. A nil publisher drops every event.
func NewNotifier(publisher messaging.EventPublisher, log *logger.Logger) *Notifier {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Notifier{
		publisher: publisher,
		log:       log.WithComponent("events"),
	}
}

// DocumentProcessed announces a successful extraction
func (n *Notifier) DocumentProcessed(ctx context.Context, batchID string, doc *domain.Document) {
	corrected := 0
	for _, r := range doc.Rows {
		corrected += len(r.Corrections)
	}
	n.publish(messaging.WithCorrelationID(ctx, batchID), messaging.EventDocumentProcessed, messaging.DocumentProcessedEvent{
		DocumentID: doc.ID,
		Name:       doc.Name,
		BatchID:    batchID,
		Rows:       len(doc.Rows),
		Issues:     len(doc.Issues),
		Corrected:  corrected,
	})
}

// DocumentFailed announces a failed extraction
func (n *Notifier) DocumentFailed(ctx context.Context, batchID string, doc *domain.Document) {
	n.publish(messaging.WithCorrelationID(ctx, batchID), messaging.EventDocumentFailed, messaging.DocumentFailedEvent{
		DocumentID: doc.ID,
		Name:       doc.Name,
		BatchID:    batchID,
		Kind:       doc.ErrorKind,
		Error:      doc.Error,
	})
}

// BatchCompleted announces the aggregate of one orchestrator run
func (n *Notifier) BatchCompleted(ctx context.Context, result domain.BatchResult) {
	n.publish(messaging.WithCorrelationID(ctx, result.BatchID), messaging.EventBatchCompleted, messaging.BatchCompletedEvent{
		BatchID:    result.BatchID,
		Total:      result.Total,
		Success:    result.Success,
		Failed:     result.Failed,
		DurationMs: result.DurationMs,
	})
}

// FeedbackRecorded announces a newly learned correction
func (n *Notifier) FeedbackRecorded(ctx context.Context, c domain.UserCorrection) {
	n.publish(ctx, messaging.EventFeedbackRecorded, messaging.FeedbackRecordedEvent{
		Field:     string(c.Field),
		Original:  c.Original,
		Corrected: c.Corrected,
		Timestamp: c.Timestamp,
	})
}

func (n *Notifier) publish(ctx context.Context, eventType string, data interface{}) {
	if err := n.publisher.Publish(ctx, eventType, data); err != nil {
		n.log.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}
