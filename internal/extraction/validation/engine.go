// Package validation flags residual problems in normalized rows.
package validation

import (
	"strings"
	"sync"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
)

const (
	// DefaultConfidenceThreshold is the confidence below which a field is flagged
	DefaultConfidenceThreshold = 0.85
	// DefaultCacheSize bounds the number of memoized documents
	DefaultCacheSize = 50
)

// Engine evaluates the rule chain for every row and field. Results are
// memoized by the sequence of row ids, so callers that change field content
// must use Revalidate. Safe for concurrent use.
type Engine struct {
	threshold float64
	cacheSize int

	mu    sync.Mutex
	cache map[string][]domain.ValidationIssue
}

// NewEngine creates an engine. Non-positive arguments fall back to the defaults.
func NewEngine(threshold float64, cacheSize int) *Engine {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Engine{
		threshold: threshold,
		cacheSize: cacheSize,
		cache:     make(map[string][]domain.ValidationIssue),
	}
}

// CheckField returns the first issue for one field, stopping at the first rule that fires:
// low confidence, empty, placeholder, then the field's structural check.
func (e *Engine) CheckField(row *domain.Row, field domain.Field, rowIndex int) (domain.ValidationIssue, bool) {
	issue := domain.ValidationIssue{RowIndex: rowIndex, Field: field}
	value := strings.TrimSpace(row.Value(field))

	if c, ok := row.ConfidenceOf(field); ok && c < e.threshold {
		issue.Category = domain.IssueLowConfidence
		issue.Code = CodeLowConfidence
		issue.Message = lowConfidenceMessage(c)
		issue.Confidence = c
		return issue, true
	}

	if value == "" {
		issue.Category = domain.IssueMissing
		issue.Code = CodeEmpty
		issue.Message = MsgEmpty
		return issue, true
	}

	if isPlaceholder(value) {
		issue.Category = domain.IssueLowConfidence
		issue.Code = CodePlaceholder
		issue.Message = MsgPlaceholder
		return issue, true
	}

	if r, ok := structural(field, value); ok {
		issue.Category = r.category
		issue.Code = r.code
		issue.Message = r.message
		return issue, true
	}

	return domain.ValidationIssue{}, false
}

// Validate returns the issues for rows, in row then field order
func (e *Engine) Validate(rows []domain.Row) []domain.ValidationIssue {
	key := cacheKey(rows)

	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return clone(cached)
	}
	e.mu.Unlock()

	issues := e.compute(rows)

	e.mu.Lock()
	if len(e.cache) >= e.cacheSize {
		e.cache = make(map[string][]domain.ValidationIssue)
	}
	e.cache[key] = issues
	e.mu.Unlock()

	return clone(issues)
}

// Revalidate drops any memoized result for rows and validates them again
func (e *Engine) Revalidate(rows []domain.Row) []domain.ValidationIssue {
	e.Invalidate(rows)
	return e.Validate(rows)
}

// Invalidate drops the memoized result for rows
func (e *Engine) Invalidate(rows []domain.Row) {
	e.mu.Lock()
	delete(e.cache, cacheKey(rows))
	e.mu.Unlock()
}

// Reset clears the whole memo
func (e *Engine) Reset() {
	e.mu.Lock()
	e.cache = make(map[string][]domain.ValidationIssue)
	e.mu.Unlock()
}

// CacheLen reports how many results are memoized
func (e *Engine) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

func (e *Engine) compute(rows []domain.Row) []domain.ValidationIssue {
	issues := make([]domain.ValidationIssue, 0)
	for i := range rows {
		for _, f := range domain.Fields {
			if issue, ok := e.CheckField(&rows[i], f, i); ok {
				issues = append(issues, issue)
			}
		}
	}
	return issues
}

func cacheKey(rows []domain.Row) string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return strings.Join(ids, ",")
}

func clone(in []domain.ValidationIssue) []domain.ValidationIssue {
	out := make([]domain.ValidationIssue, len(in))
	copy(out, in)
	return out
}
