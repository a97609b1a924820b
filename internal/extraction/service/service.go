// Package service owns the document lifecycle: upload, batch extraction and user edits.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/internal/extraction/events"
	"github.com/formflow/formflow-backend/internal/extraction/feedback"
	"github.com/formflow/formflow-backend/internal/extraction/normalizer"
	"github.com/formflow/formflow-backend/internal/extraction/processor"
	"github.com/formflow/formflow-backend/internal/extraction/storage"
	"github.com/formflow/formflow-backend/internal/extraction/validation"
	"github.com/formflow/formflow-backend/pkg/logger"
)

var (
	ErrDocumentNotFound     = storage.ErrNotFound
	ErrDocumentNotProcessed = errors.New("document has not been processed")
	ErrRowOutOfRange        = errors.New("row index out of range")
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidPattern       = errors.New("invalid find pattern")
)

// DefaultConcurrency is the orchestrator window size
const DefaultConcurrency = 3

// Service drives documents from upload through extraction to edited, validated rows
type Service struct {
	store       *storage.DocumentStore
	registry    *processor.Registry
	normalizer  *normalizer.Normalizer
	validator   *validation.Engine
	feedback    *feedback.Store
	notifier    *events.Notifier
	concurrency int
	log         *logger.Logger
}

// NewService creates the extraction service. concurrency below 1 falls back to DefaultConcurrency.
func NewService(
	store *storage.DocumentStore,
	registry *processor.Registry,
	norm *normalizer.Normalizer,
	validator *validation.Engine,
	fb *feedback.Store,
	notifier *events.Notifier,
	concurrency int,
	log *logger.Logger,
) *Service {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		store:       store,
		registry:    registry,
		normalizer:  norm,
		validator:   validator,
		feedback:    fb,
		notifier:    notifier,
		concurrency: concurrency,
		log:         log.WithComponent("extraction-service"),
	}
}

// AddDocuments registers uploads as Pending documents
func (s *Service) AddDocuments(uploads []domain.Upload) []domain.Document {
	out := make([]domain.Document, 0, len(uploads))
	now := time.Now().UTC()

	for _, u := range uploads {
		contentType := u.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(u.Data)
		}

		doc := &domain.Document{
			ID:          storage.GenerateID(),
			Name:        u.Name,
			Size:        domain.FormatSize(int64(len(u.Data))),
			SizeBytes:   int64(len(u.Data)),
			ContentType: contentType,
			Status:      domain.StatusPending,
			Image:       u.Data,
			Rows:        []domain.Row{},
			Issues:      []domain.ValidationIssue{},
			CreatedAt:   now,
		}
		s.store.Add(doc)

		s.log.Info().
			Str("document_id", doc.ID).
			Str("name", doc.Name).
			Str("size", doc.Size).
			Str("content_type", contentType).
			Msg("document added")

		copied, err := s.store.Get(doc.ID)
		if err == nil {
			out = append(out, copied)
		}
	}

	return out
}

// GetDocument returns a snapshot of one document
func (s *Service) GetDocument(id string) (domain.Document, error) {
	return s.store.Get(id)
}

// ListDocuments returns snapshots of all documents in upload order
func (s *Service) ListDocuments() []domain.Document {
	return s.store.List()
}

// RemoveDocument drops a document and its cached validation
func (s *Service) RemoveDocument(id string) error {
	doc, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.validator.Invalidate(doc.Rows)
	s.log.Info().Str("document_id", id).Msg("document removed")
	return nil
}

// ClearAll drops every document and the whole validation cache
func (s *Service) ClearAll() int {
	n := s.store.Clear()
	s.validator.Reset()
	s.log.Info().Int("documents", n).Msg("all documents cleared")
	return n
}

// FeedbackEntries returns the learned corrections, oldest first
func (s *Service) FeedbackEntries() []domain.UserCorrection {
	return s.feedback.All()
}

// FeedbackStats summarizes learned corrections per field
func (s *Service) FeedbackStats() map[domain.Field]feedback.FieldStats {
	return s.feedback.Stats()
}

// ClearFeedback forgets every learned correction
func (s *Service) ClearFeedback(ctx context.Context) error {
	if err := s.feedback.Clear(ctx); err != nil {
		return fmt.Errorf("clear feedback: %w", err)
	}
	s.log.Info().Msg("feedback cleared")
	return nil
}
