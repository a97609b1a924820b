package processor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
)

// JSONExtractor reads forms that were already extracted, for example an
// export being re-run through normalization. The payload has the same shape
// the vision service returns.
type JSONExtractor struct{}

// NewJSONExtractor creates a JSON extractor
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

func (p *JSONExtractor) Name() string { return "json" }

func (p *JSONExtractor) CanExtract(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json")
}

func (p *JSONExtractor) Extract(ctx context.Context, data []byte, contentType string) (*domain.ExtractionResult, error) {
	var payload visionExtractionResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, newError(KindMalformed, "json: parse forms: %w", err)
	}
	return payload.toResult()
}
