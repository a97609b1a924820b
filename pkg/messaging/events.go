package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventDocumentProcessed = "extraction.document.processed"
	EventDocumentFailed    = "extraction.document.failed"
	EventBatchCompleted    = "extraction.batch.completed"
	EventFeedbackRecorded  = "extraction.feedback.recorded"
)

// ExchangeExtractionEvents is the topic exchange all extraction events go to
const ExchangeExtractionEvents = "extraction.events"

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// DocumentProcessedEvent is published when extraction succeeded for a document
type DocumentProcessedEvent struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	BatchID    string `json:"batch_id"`
	Rows       int    `json:"rows"`
	Issues     int    `json:"issues"`
	Corrected  int    `json:"corrected_fields"`
}

// DocumentFailedEvent is published when extraction failed for a document
type DocumentFailedEvent struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	BatchID    string `json:"batch_id"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
}

// BatchCompletedEvent is published once per orchestrator run
type BatchCompletedEvent struct {
	BatchID    string `json:"batch_id"`
	Total      int    `json:"total"`
	Success    int    `json:"success"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
}

// FeedbackRecordedEvent is published when a user edit is learned
type FeedbackRecordedEvent struct {
	Field     string    `json:"field"`
	Original  string    `json:"original"`
	Corrected string    `json:"corrected"`
	Timestamp time.Time `json:"timestamp"`
}
