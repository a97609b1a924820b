// Package normalizer turns OCR-garbled field strings into clean values with an audit trail.
//
// Every function here is total: ambiguous input falls back to the trimmed
// original rather than failing.
package normalizer

import (
	"strings"

	"github.com/formflow/formflow-backend/internal/extraction/dictionary"
	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/internal/extraction/fuzzy"
)

const (
	// ConfidenceBoost is added to a field's confidence when its value was corrected
	ConfidenceBoost = 0.15
	// MaxConfidence caps boosted confidence
	MaxConfidence = 0.99
)

// Suggester looks up a learned user correction for a value
type Suggester interface {
	Suggest(field domain.Field, value string) (string, bool)
}

// Result is a normalized value and, when it differs from the input, what it replaced
type Result struct {
	Value      string
	Correction *domain.CorrectionDetail
}

// Normalizer dispatches each field to its strategy and applies learned corrections last
type Normalizer struct {
	arabic   *ArabicCorrector
	ink      *InkTypeNormalizer
	feedback Suggester
}

// New creates a normalizer. feedback may be nil.
func New(dict *dictionary.Dictionaries, matcher *fuzzy.Matcher, feedback Suggester) *Normalizer {
	return &Normalizer{
		arabic:   NewArabicCorrector(matcher, dict),
		ink:      NewInkTypeNormalizer(dict),
		feedback: feedback,
	}
}

// Field normalizes one raw value
func (n *Normalizer) Field(field domain.Field, raw string) Result {
	original := strings.TrimSpace(raw)
	value, reason := n.byField(field, original)

	var res Result
	if value != original {
		res.Correction = &domain.CorrectionDetail{Original: original, Reason: reason}
	}

	// a learned correction always wins and is audited as feedback, even when
	// it agrees with the normalizer
	if n.feedback != nil {
		if suggestion, ok := n.feedback.Suggest(field, value); ok {
			res.Correction = &domain.CorrectionDetail{Original: value, Reason: domain.ReasonUserFeedback}
			value = suggestion
		}
	}

	res.Value = value
	return res
}

func (n *Normalizer) byField(field domain.Field, value string) (string, string) {
	if value == "" {
		return value, ""
	}

	if domain.ContainsArabic(value) {
		return n.arabic.Correct(field, value)
	}

	switch field {
	case domain.FieldDate:
		return NormalizeDate(value), domain.ReasonDate
	case domain.FieldEmployeeID:
		r := NormalizeEmployeeID(value)
		if r.Outcome != Corrected {
			return value, ""
		}
		return r.Value, domain.ReasonEmployeeID
	case domain.FieldInkType:
		return n.ink.Normalize(value), domain.ReasonInkType
	case domain.FieldInkNumber:
		return NormalizeNumber(value), domain.ReasonNumeric
	}
	return value, ""
}

// Row normalizes every canonical field of an extracted row. Corrected fields
// that carry a confidence get ConfidenceBoost, capped at MaxConfidence.
func (n *Normalizer) Row(id string, raw domain.RawRow) domain.Row {
	row := domain.Row{
		ID:          id,
		Values:      make(map[domain.Field]string, len(domain.Fields)),
		Boxes:       make(map[domain.Field]domain.BoundingBox),
		Confidence:  make(map[domain.Field]float64),
		Corrections: make(map[domain.Field]domain.CorrectionDetail),
	}

	for _, f := range domain.Fields {
		res := n.Field(f, raw.Values[f])
		row.Values[f] = res.Value

		if box, ok := raw.Boxes[f]; ok {
			row.Boxes[f] = box
		}

		conf, hasConf := raw.Confidence[f]
		if hasConf {
			row.Confidence[f] = conf
		}

		if res.Correction != nil {
			row.Corrections[f] = *res.Correction
			if hasConf {
				row.Confidence[f] = min(MaxConfidence, conf+ConfidenceBoost)
			}
		}
	}

	return row
}
