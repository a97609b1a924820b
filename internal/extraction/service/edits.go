package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
)

// UpdateField sets one field of one row. A change from a non-empty value is
// learned as a user correction. The field's confidence and correction detail
// are dropped since the value is now user-provided.
func (s *Service) UpdateField(ctx context.Context, id string, rowIndex int, field domain.Field, value string) ([]domain.ValidationIssue, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	var previous string
	issues, err := s.editRows(id, func(d *domain.Document) error {
		if err := checkIndices(d, []int{rowIndex}); err != nil {
			return err
		}
		row := &d.Rows[rowIndex]
		previous = row.Values[field]
		row.Values[field] = value
		delete(row.Confidence, field)
		delete(row.Corrections, field)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.learn(ctx, id, field, previous, value)
	return issues, nil
}

// ToggleVerified sets the verified flag on the given rows. Validation is not rerun.
func (s *Service) ToggleVerified(id string, indices []int, verified bool) ([]domain.ValidationIssue, error) {
	var issues []domain.ValidationIssue
	err := s.store.Update(id, func(d *domain.Document) error {
		if d.Status != domain.StatusProcessed {
			return ErrDocumentNotProcessed
		}
		if err := checkIndices(d, indices); err != nil {
			return err
		}
		for _, i := range indices {
			d.Rows[i].Verified = verified
		}
		issues = append([]domain.ValidationIssue{}, d.Issues...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// BatchReplace replaces every match of the find pattern in field on the given rows.
// find is a regular expression; replace may reference groups as $1.
func (s *Service) BatchReplace(id string, indices []int, field domain.Field, find, replace string) ([]domain.ValidationIssue, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if find == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	re, err := regexp.Compile(find)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	replaced := 0
	issues, err := s.editRows(id, func(d *domain.Document) error {
		if err := checkIndices(d, indices); err != nil {
			return err
		}
		for _, i := range indices {
			old := d.Rows[i].Values[field]
			updated := re.ReplaceAllString(old, replace)
			if updated != old {
				d.Rows[i].Values[field] = updated
				replaced++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("document_id", id).
		Str("field", string(field)).
		Int("rows", len(indices)).
		Int("changed", replaced).
		Msg("batch replace applied")

	return issues, nil
}

// DeleteRows removes the given rows. Later rows shift down so issues are recomputed.
func (s *Service) DeleteRows(id string, indices []int) ([]domain.ValidationIssue, error) {
	issues, err := s.editRows(id, func(d *domain.Document) error {
		if err := checkIndices(d, indices); err != nil {
			return err
		}

		s.validator.Invalidate(d.Rows)

		sorted := append([]int(nil), indices...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		last := -1
		for _, i := range sorted {
			if i == last {
				continue
			}
			d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
			last = i
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("document_id", id).Int("deleted", len(indices)).Msg("rows deleted")
	return issues, nil
}

// editRows applies fn to a processed document and revalidates it under the same lock
func (s *Service) editRows(id string, fn func(*domain.Document) error) ([]domain.ValidationIssue, error) {
	var issues []domain.ValidationIssue
	err := s.store.Update(id, func(d *domain.Document) error {
		if d.Status != domain.StatusProcessed {
			return ErrDocumentNotProcessed
		}
		if err := fn(d); err != nil {
			return err
		}
		d.Issues = s.validator.Revalidate(d.Rows)
		issues = append([]domain.ValidationIssue{}, d.Issues...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// learn records a user edit in the feedback store. A persistence failure is
// logged; the edit itself already succeeded.
func (s *Service) learn(ctx context.Context, id string, field domain.Field, previous, value string) {
	correction, learned, err := s.feedback.Record(ctx, field, previous, value)
	if err != nil {
		s.log.Error().Err(err).
			Str("document_id", id).
			Str("field", string(field)).
			Msg("failed to persist user correction")
	}
	if learned {
		s.notifier.FeedbackRecorded(ctx, correction)
	}
}

func checkIndices(d *domain.Document, indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= len(d.Rows) {
			return fmt.Errorf("%w: %d (document has %d rows)", ErrRowOutOfRange, i, len(d.Rows))
		}
	}
	return nil
}
