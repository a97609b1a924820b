package httputil_test

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/formflow/formflow-backend/pkg/errors"
	"github.com/formflow/formflow-backend/pkg/httputil"
	"github.com/formflow/formflow-backend/pkg/logger"
	"github.com/formflow/formflow-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_WrapsDataInEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	httputil.JSON(rr, http.StatusOK, map[string]int{"removed": 2})

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data["removed"])
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantHidden string
	}{
		{
			name:       "app error",
			err:        errors.NotFound("document"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "wrapped cause is not rendered",
			err:        errors.Wrap(stderrors.New("disk on fire"), errors.Internal("failed to read uploaded file")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantHidden: "disk on fire",
		},
		{
			name:       "plain error becomes opaque 500",
			err:        stderrors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantHidden: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			httputil.Error(rr, tt.err)

			testutil.AssertStatus(t, rr, tt.wantStatus)
			var resp httputil.Response
			testutil.ParseJSONBody(t, rr, &resp)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantHidden != "" {
				assert.NotContains(t, rr.Body.String(), tt.wantHidden)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Field string `json:"field"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"field":"Date"}`, false},
		{"malformed", `{"field":`, true},
		{"unknown field", `{"field":"Date","colour":"red"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var got body
			err := httputil.DecodeJSON(req, &got)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "Date", got.Field)
				return
			}
			assert.True(t, errors.Is(err, errors.ErrBadRequest))
		})
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	type rowsRequest struct {
		Indices []int  `json:"indices" validate:"required,min=1,dive,gte=0"`
		Find    string `json:"find" validate:"required"`
	}

	tests := []struct {
		name        string
		req         rowsRequest
		wantDetails map[string]string
	}{
		{
			name:        "valid",
			req:         rowsRequest{Indices: []int{0, 2}, Find: "x"},
			wantDetails: nil,
		},
		{
			name: "empty list and missing find",
			req:  rowsRequest{Indices: []int{}},
			wantDetails: map[string]string{
				"indices": "must contain at least 1 item(s)",
				"find":    "this field is required",
			},
		},
		{
			name:        "negative index",
			req:         rowsRequest{Indices: []int{1, -1}, Find: "x"},
			wantDetails: map[string]string{"indices[1]": "must be greater than or equal to 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := httputil.Validate(tt.req)
			if tt.wantDetails == nil {
				require.NoError(t, err)
				return
			}
			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Equal(t, tt.wantDetails, appErr.Details)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := httputil.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := testutil.ExecuteRequest(h, req)
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))

	rr = testutil.ExecuteRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))
}

func TestLogger_RecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf)

	h := httputil.RequestID(httputil.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})))

	req := httptest.NewRequest(http.MethodPost, "/documents", nil)
	req.Header.Set("X-Request-ID", "req-7")
	testutil.ExecuteRequest(h, req)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-7"`)
	assert.Contains(t, out, `"status":409`)
	assert.Contains(t, out, `"path":"/documents"`)
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	h := httputil.Recoverer(logger.NewWithWriter("test", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("extractor exploded")
	}))

	rr := testutil.ExecuteRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	testutil.AssertBodyContains(t, rr, "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "extractor exploded")
}
