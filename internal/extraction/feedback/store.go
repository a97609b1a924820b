// Package feedback keeps the log of user corrections and suggests them for new extractions.
package feedback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/pkg/logger"
)

// DefaultMaxEntries is how many corrections are kept; older ones are evicted first
const DefaultMaxEntries = 100

// maxStatExamples is how many examples Stats reports per field
const maxStatExamples = 3

// Persister loads and saves the full correction log
type Persister interface {
	Load(ctx context.Context) ([]domain.UserCorrection, error)
	Save(ctx context.Context, entries []domain.UserCorrection) error
}

// FieldStats summarises the corrections learned for one field
type FieldStats struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// Store is the append-only, size-bounded correction log. Writers are
// serialized and every write is persisted before it returns.
type Store struct {
	mu        sync.RWMutex
	entries   []domain.UserCorrection
	max       int
	persister Persister
	log       *logger.Logger
}

// NewStore loads the persisted log. A nil persister keeps corrections in memory only.
func NewStore(ctx context.Context, persister Persister, maxEntries int, log *logger.Logger) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	s := &Store{
		max:       maxEntries,
		persister: persister,
		log:       log,
	}

	if persister != nil {
		entries, err := persister.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("feedback: load corrections: %w", err)
		}
		if len(entries) > maxEntries {
			entries = entries[len(entries)-maxEntries:]
		}
		s.entries = entries
	}

	log.Info().Int("corrections", len(s.entries)).Msg("feedback store loaded")
	return s, nil
}

// Record appends a correction when both values are non-empty after trimming
// and differ. It reports whether anything was learned. A persistence failure
// is returned but the correction stays in memory.
func (s *Store) Record(ctx context.Context, field domain.Field, original, corrected string) (domain.UserCorrection, bool, error) {
	original = strings.TrimSpace(original)
	corrected = strings.TrimSpace(corrected)
	if original == "" || corrected == "" || original == corrected {
		return domain.UserCorrection{}, false, nil
	}

	c := domain.UserCorrection{
		Field:     field,
		Original:  original,
		Corrected: corrected,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, c)
	if over := len(s.entries) - s.max; over > 0 {
		s.entries = append([]domain.UserCorrection(nil), s.entries[over:]...)
	}

	s.log.Debug().
		Str("field", string(field)).
		Str("original", original).
		Str("corrected", corrected).
		Msg("feedback learned")

	if err := s.persistLocked(ctx); err != nil {
		return c, true, err
	}
	return c, true, nil
}

// Suggest returns the most recent correction for field whose original equals
// value case-insensitively, falling back to the most recent whose original
// contains value.
func (s *Store) Suggest(field domain.Field, value string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.Field == field && strings.ToLower(e.Original) == needle {
			return e.Corrected, true
		}
	}

	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.Field == field && strings.Contains(strings.ToLower(e.Original), needle) {
			return e.Corrected, true
		}
	}

	return "", false
}

// Stats counts corrections per field with the oldest few as examples
func (s *Store) Stats() map[domain.Field]FieldStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[domain.Field]FieldStats)
	for _, e := range s.entries {
		st := stats[e.Field]
		st.Count++
		if len(st.Examples) < maxStatExamples {
			st.Examples = append(st.Examples, fmt.Sprintf("%q → %q", e.Original, e.Corrected))
		}
		stats[e.Field] = st
	}
	return stats
}

// All returns a copy of the log, oldest first
func (s *Store) All() []domain.UserCorrection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserCorrection, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored corrections
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops every correction and persists the empty log
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.log.Info().Msg("feedback corrections cleared")
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	snapshot := make([]domain.UserCorrection, len(s.entries))
	copy(snapshot, s.entries)

	if err := s.persister.Save(ctx, snapshot); err != nil {
		s.log.Error().Err(err).Int("corrections", len(snapshot)).Msg("failed to persist feedback corrections")
		return fmt.Errorf("feedback: save corrections: %w", err)
	}
	return nil
}
