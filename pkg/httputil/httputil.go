package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/formflow/formflow-backend/pkg/errors"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func write(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON wraps data in a success envelope
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	})
}

// Error renders err. Anything that is not an *AppError becomes an opaque 500
// so causes never leak to clients.
func Error(w http.ResponseWriter, err error) {
	body := &ErrorBody{Code: "INTERNAL_ERROR", Message: "an unexpected error occurred"}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		body = &ErrorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
	}

	write(w, errors.StatusOf(err), Response{Error: body})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// DecodeJSON decodes the request body into v, rejecting unknown fields
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, errors.BadRequest("invalid JSON body"))
	}
	return nil
}
