package database_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/formflow/formflow-backend/pkg/database"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPQError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantNil    bool
		wantStatus int
		wantCode   string
	}{
		{name: "non pq error", err: fmt.Errorf("boom"), wantNil: true},
		{name: "unique", err: &pq.Error{Code: "23505"}, wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "not null", err: &pq.Error{Code: "23502", Column: "field"}, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "field check", err: &pq.Error{Code: "23514", Constraint: "user_corrections_field_valid"}, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "other check", err: &pq.Error{Code: "23514", Constraint: "something_else"}, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{name: "missing table", err: &pq.Error{Code: "42P01"}, wantStatus: http.StatusServiceUnavailable, wantCode: "SERVICE_UNAVAILABLE"},
		{name: "values differ check", err: &pq.Error{Code: "23514", Constraint: "user_corrections_values_differ"}, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "wrapped unique", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "unmapped code", err: &pq.Error{Code: "40001"}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := database.MapPQError(tt.err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
