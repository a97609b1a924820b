// Package processor talks to the extraction collaborators that turn a form image into raw rows.
package processor

import (
	"context"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
)

// Extractor turns one preprocessed image into raw rows.
// Implementations return *ExtractionError so failures arrive classified.
type Extractor interface {
	// CanExtract returns true if this extractor handles the given content type
	CanExtract(contentType string) bool

	// Extract returns the structured rows found in data
	Extract(ctx context.Context, data []byte, contentType string) (*domain.ExtractionResult, error)

	// Name returns the extractor name for logging
	Name() string
}

// Registry holds all registered extractors in priority order
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a new extractor registry
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// FindExtractors returns every extractor that handles contentType, in
// registration order. If the first fails the next one gets a try.
func (r *Registry) FindExtractors(contentType string) []Extractor {
	var result []Extractor
	for _, e := range r.extractors {
		if e.CanExtract(contentType) {
			result = append(result, e)
		}
	}
	return result
}

// Names lists the registered extractors
func (r *Registry) Names() []string {
	names := make([]string, len(r.extractors))
	for i, e := range r.extractors {
		names[i] = e.Name()
	}
	return names
}
