package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/internal/extraction/processor"
	"github.com/formflow/formflow-backend/internal/extraction/storage"
	"github.com/formflow/formflow-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var errNotPending = errors.New("document is not pending")

// ProcessPending extracts every Pending document in windows of s.concurrency.
// All members of a window move to Processing before any call is dispatched and
// the next window starts only after every member has finished. A failed
// document ends in Error and never affects its siblings.
func (s *Service) ProcessPending(ctx context.Context) domain.BatchResult {
	started := time.Now()
	batchID := uuid.NewString()
	log := s.log.WithBatchID(batchID)

	ids := s.store.IDsWithStatus(domain.StatusPending)
	result := domain.BatchResult{BatchID: batchID, Total: len(ids)}

	log.Info().
		Int("documents", len(ids)).
		Int("concurrency", s.concurrency).
		Msg("batch started")

	for start := 0; start < len(ids); start += s.concurrency {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("remaining", len(ids)-start).Msg("batch cancelled, leaving documents pending")
			break
		}

		window := s.claim(ids[start:min(start+s.concurrency, len(ids))])
		ok := make([]bool, len(window))

		var g errgroup.Group
		for i, id := range window {
			i, id := i, id
			g.Go(func() error {
				ok[i] = s.processDocument(ctx, batchID, id)
				return nil
			})
		}
		_ = g.Wait()

		for _, succeeded := range ok {
			if succeeded {
				result.Success++
			} else {
				result.Failed++
			}
		}
	}

	result.DurationMs = time.Since(started).Milliseconds()

	log.Info().
		Int("total", result.Total).
		Int("success", result.Success).
		Int("failed", result.Failed).
		Int64("duration_ms", result.DurationMs).
		Msg("batch completed")

	s.notifier.BatchCompleted(ctx, result)

	return result
}

// claim moves the window's documents from Pending to Processing. Documents
// removed or claimed by another batch in the meantime are skipped.
func (s *Service) claim(ids []string) []string {
	claimed := make([]string, 0, len(ids))
	for _, id := range ids {
		err := s.store.Update(id, func(d *domain.Document) error {
			if d.Status != domain.StatusPending {
				return errNotPending
			}
			d.Status = domain.StatusProcessing
			return nil
		})
		if err == nil {
			claimed = append(claimed, id)
		}
	}
	return claimed
}

// processDocument runs one document through extraction, normalization and
// validation. It reports whether the document ended Processed.
func (s *Service) processDocument(ctx context.Context, batchID, id string) (ok bool) {
	log := s.log.WithBatchID(batchID).WithDocumentID(id)

	// the extractor reads the image outside the store lock, so it gets its own copy
	doc, err := s.store.Checkout(id)
	if err != nil {
		log.Warn().Msg("document removed before dispatch")
		return false
	}
	defer storage.ZeroBytes(doc.Image)

	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, log, batchID, id, &processor.ExtractionError{
				Kind: processor.KindUnknown,
				Err:  fmt.Errorf("panic during extraction: %v", r),
			})
			ok = false
		}
	}()

	started := time.Now()
	result, err := s.extract(ctx, log, &doc)
	if err != nil {
		s.fail(ctx, log, batchID, id, err)
		return false
	}

	rows := make([]domain.Row, len(result.Rows))
	for i, raw := range result.Rows {
		rows[i] = s.normalizer.Row(domain.RowID(id, i), raw)
	}
	issues := s.validator.Validate(rows)

	var snapshot domain.Document
	err = s.store.Update(id, func(d *domain.Document) error {
		d.Status = domain.StatusProcessed
		d.Rows = rows
		d.Issues = issues
		d.ProcessedPreview = result.ProcessedPreview
		d.Dimensions = result.Dimensions
		d.Quality = result.Quality
		d.Error = ""
		d.ErrorKind = ""
		// edits may mutate d.Rows as soon as the lock is released
		snapshot = domain.Document{
			ID:     d.ID,
			Name:   d.Name,
			Rows:   make([]domain.Row, len(rows)),
			Issues: append([]domain.ValidationIssue(nil), issues...),
		}
		for i, r := range rows {
			snapshot.Rows[i] = r.Clone()
		}
		return nil
	})
	if err != nil {
		log.Warn().Msg("document removed during extraction, result discarded")
		return false
	}

	log.Info().
		Int("rows", len(rows)).
		Int("issues", len(issues)).
		Int64("duration_ms", time.Since(started).Milliseconds()).
		Msg("document processed")

	s.notifier.DocumentProcessed(ctx, batchID, &snapshot)
	return true
}

// extract tries each extractor registered for the content type in order and
// returns the first success.
func (s *Service) extract(ctx context.Context, log *logger.Logger, doc *domain.Document) (*domain.ExtractionResult, error) {
	extractors := s.registry.FindExtractors(doc.ContentType)
	if len(extractors) == 0 {
		return nil, &processor.ExtractionError{
			Kind: processor.KindInvalidInput,
			Err:  fmt.Errorf("no extractor available for content type %q", doc.ContentType),
		}
	}

	var lastErr error
	for _, ext := range extractors {
		log.Info().
			Str("extractor", ext.Name()).
			Str("content_type", doc.ContentType).
			Msg("dispatching extraction")

		result, err := ext.Extract(ctx, doc.Image, doc.ContentType)
		if err == nil {
			return result, nil
		}
		lastErr = err

		log.Warn().Err(err).
			Str("extractor", ext.Name()).
			Msg("extractor failed, trying next")
	}
	return nil, lastErr
}

func (s *Service) fail(ctx context.Context, log *logger.Logger, batchID, id string, err error) {
	extErr := processor.Classify(err)

	var snapshot domain.Document
	updateErr := s.store.Update(id, func(d *domain.Document) error {
		d.Status = domain.StatusError
		d.Error = extErr.Kind.Message()
		d.ErrorKind = string(extErr.Kind)
		snapshot = domain.Document{ID: d.ID, Name: d.Name, Error: d.Error, ErrorKind: d.ErrorKind}
		return nil
	})

	log.Error().Err(err).
		Str("kind", string(extErr.Kind)).
		Bool("retryable", extErr.Retryable()).
		Msg("extraction failed")

	if updateErr == nil {
		s.notifier.DocumentFailed(ctx, batchID, &snapshot)
	}
}
