package handler

import (
	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/pkg/httputil"
	"github.com/go-playground/validator/v10"
)

func init() {
	err := httputil.RegisterCustomValidation("formfield", func(fl validator.FieldLevel) bool {
		return domain.Field(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(err)
	}
}

// UpdateFieldRequest sets one field of one row
type UpdateFieldRequest struct {
	Field string `json:"field" validate:"required,formfield"`
	Value string `json:"value"`
}

// VerifyRowsRequest sets the verified flag on rows
type VerifyRowsRequest struct {
	Indices  []int `json:"indices" validate:"required,min=1,dive,gte=0"`
	Verified *bool `json:"verified" validate:"required"`
}

// BatchReplaceRequest replaces a pattern in one field across rows
type BatchReplaceRequest struct {
	Indices []int  `json:"indices" validate:"required,min=1,dive,gte=0"`
	Field   string `json:"field" validate:"required,formfield"`
	Find    string `json:"find" validate:"required"`
	Replace string `json:"replace"`
}

// DeleteRowsRequest removes rows
type DeleteRowsRequest struct {
	Indices []int `json:"indices" validate:"required,min=1,dive,gte=0"`
}

// IssuesResponse is returned by every row edit
type IssuesResponse struct {
	DocumentID string                   `json:"document_id"`
	Issues     []domain.ValidationIssue `json:"issues"`
}

// ClearResponse reports how many documents were dropped
type ClearResponse struct {
	Removed int `json:"removed"`
}
