package domain

import (
	"fmt"
	"time"
)

// Field is one of the canonical delivery-form attributes
type Field string

const (
	FieldPrinterName   Field = "Printer Name"
	FieldInkType       Field = "Ink Type"
	FieldInkNumber     Field = "Ink Number"
	FieldDate          Field = "Date"
	FieldDepartment    Field = "Department"
	FieldRecipientName Field = "Recipient Name"
	FieldEmployeeID    Field = "Employee ID"
	FieldDelivererName Field = "Deliverer Name"
)

// Fields lists the canonical fields in form order. Validation and export iterate in this order.
var Fields = []Field{
	FieldPrinterName,
	FieldInkType,
	FieldInkNumber,
	FieldDate,
	FieldDepartment,
	FieldRecipientName,
	FieldEmployeeID,
	FieldDelivererName,
}

// Valid reports whether f is one of the canonical fields
func (f Field) Valid() bool {
	for _, c := range Fields {
		if f == c {
			return true
		}
	}
	return false
}

// IsPersonName reports whether the field holds a person's name
func (f Field) IsPersonName() bool {
	return f == FieldRecipientName || f == FieldDelivererName || f == FieldPrinterName
}

// Status represents the processing state of a document
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusError      Status = "error"
)

// BoundingBox locates a field on the source page. Quad holds normalized
// [x_min, y_min, x_max, y_max] coordinates in the range 0..1.
type BoundingBox struct {
	Quad [4]float64 `json:"quad"`
	Page int        `json:"page"`
}

// CorrectionDetail records the value a correction replaced and why
type CorrectionDetail struct {
	Original string `json:"original"`
	Reason   string `json:"reason"`
}

// Correction reasons. Audits group on these, so they are a closed set.
const (
	ReasonDate         = "date normalization"
	ReasonEmployeeID   = "employee ID OCR fix"
	ReasonInkType      = "ink type standardization"
	ReasonNumeric      = "numeric OCR fix"
	ReasonDictionary   = "dictionary match"
	ReasonCommon       = "common character fix"
	ReasonUserFeedback = "user feedback"
)

// Row is one extracted form instance
type Row struct {
	ID          string                     `json:"id"`
	Verified    bool                       `json:"verified"`
	Values      map[Field]string           `json:"values"`
	Boxes       map[Field]BoundingBox      `json:"boxes,omitempty"`
	Confidence  map[Field]float64          `json:"confidence,omitempty"`
	Corrections map[Field]CorrectionDetail `json:"corrections,omitempty"`
}

// RowID derives a row identifier from its document and position
func RowID(documentID string, index int) string {
	return fmt.Sprintf("%s_row_%d", documentID, index)
}

// Value returns the field value, empty when unset
func (r *Row) Value(f Field) string {
	return r.Values[f]
}

// ConfidenceOf returns the field confidence and whether one was reported
func (r *Row) ConfidenceOf(f Field) (float64, bool) {
	c, ok := r.Confidence[f]
	return c, ok
}

// Clone returns a deep copy of the row
func (r Row) Clone() Row {
	out := Row{ID: r.ID, Verified: r.Verified, Values: make(map[Field]string, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	if r.Boxes != nil {
		out.Boxes = make(map[Field]BoundingBox, len(r.Boxes))
		for k, v := range r.Boxes {
			out.Boxes[k] = v
		}
	}
	if r.Confidence != nil {
		out.Confidence = make(map[Field]float64, len(r.Confidence))
		for k, v := range r.Confidence {
			out.Confidence[k] = v
		}
	}
	if r.Corrections != nil {
		out.Corrections = make(map[Field]CorrectionDetail, len(r.Corrections))
		for k, v := range r.Corrections {
			out.Corrections[k] = v
		}
	}
	return out
}

// IssueCategory classifies a validation issue
type IssueCategory string

const (
	IssueMissing       IssueCategory = "missing"
	IssueFormat        IssueCategory = "format"
	IssueLowConfidence IssueCategory = "low_confidence"
)

// ValidationIssue flags a residual problem in one field of one row
type ValidationIssue struct {
	RowIndex int           `json:"row_index"`
	Field    Field         `json:"field"`
	Message  string        `json:"message"`
	Category IssueCategory `json:"category"`
	// Code names the rule that fired, independent of the message language
	Code string `json:"code"`
	// Confidence is set for low-confidence issues
	Confidence float64 `json:"confidence,omitempty"`
}

// UserCorrection is one learned edit
type UserCorrection struct {
	Field     Field     `json:"field" db:"field"`
	Original  string    `json:"original" db:"original"`
	Corrected string    `json:"corrected" db:"corrected"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// QualityReport is produced by the preprocessing collaborator and passed through untouched
type QualityReport struct {
	Score      float64  `json:"score"`
	Sharpness  float64  `json:"sharpness"`
	Contrast   float64  `json:"contrast"`
	Operations []string `json:"operations"`
}

// Dimensions of the source image in pixels
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RawRow is one form as returned by the extraction collaborator, before normalization
type RawRow struct {
	Values     map[Field]string      `json:"values"`
	Confidence map[Field]float64     `json:"confidence,omitempty"`
	Boxes      map[Field]BoundingBox `json:"boxes,omitempty"`
}

// ExtractionResult is the structured success output of the extraction collaborator
type ExtractionResult struct {
	Rows             []RawRow       `json:"rows"`
	ProcessedPreview string         `json:"processed_preview,omitempty"`
	Dimensions       *Dimensions    `json:"dimensions,omitempty"`
	Quality          *QualityReport `json:"quality,omitempty"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
}

// Document is one uploaded image and its derived rows
type Document struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Size             string            `json:"size"`
	SizeBytes        int64             `json:"size_bytes"`
	ContentType      string            `json:"content_type,omitempty"`
	Status           Status            `json:"status"`
	Image            []byte            `json:"-"`
	ProcessedPreview string            `json:"processed_preview,omitempty"`
	Dimensions       *Dimensions       `json:"dimensions,omitempty"`
	Quality          *QualityReport    `json:"quality,omitempty"`
	Rows             []Row             `json:"rows"`
	Issues           []ValidationIssue `json:"issues"`
	Error            string            `json:"error,omitempty"`
	ErrorKind        string            `json:"error_kind,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Upload is a file handed to AddDocuments
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// BatchResult aggregates one orchestrator run
type BatchResult struct {
	BatchID    string `json:"batch_id"`
	Total      int    `json:"total"`
	Success    int    `json:"success"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
}
