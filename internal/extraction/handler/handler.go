// Package handler exposes document upload, batch extraction and the row edit interface over HTTP.
package handler

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/internal/extraction/service"
	"github.com/formflow/formflow-backend/pkg/errors"
	"github.com/formflow/formflow-backend/pkg/httputil"
	"github.com/formflow/formflow-backend/pkg/i18n"
	"github.com/formflow/formflow-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// DefaultMaxUploadSize bounds a multipart upload request
const DefaultMaxUploadSize = 20 << 20

// Handler handles HTTP requests for form extraction
type Handler struct {
	service       *service.Service
	maxUploadSize int64
	log           *logger.Logger
}

// NewHandler creates a new extraction handler
func NewHandler(svc *service.Service, maxUploadSize int64, log *logger.Logger) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &Handler{
		service:       svc,
		maxUploadSize: maxUploadSize,
		log:           log.WithComponent("extraction-handler"),
	}
}

// Routes mounts the extraction endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.ListDocuments)
		r.Post("/", h.Upload)
		r.Delete("/", h.ClearDocuments)
		r.Get("/{id}", h.GetDocument)
		r.Delete("/{id}", h.RemoveDocument)
		r.Put("/{id}/rows/{index}/fields", h.UpdateField)
		r.Put("/{id}/rows/verification", h.VerifyRows)
		r.Post("/{id}/rows/replace", h.BatchReplace)
		r.Post("/{id}/rows/delete", h.DeleteRows)
	})

	r.Post("/batches", h.ProcessBatch)

	r.Route("/feedback", func(r chi.Router) {
		r.Get("/", h.ListFeedback)
		r.Get("/stats", h.FeedbackStats)
		r.Delete("/", h.ClearFeedback)
	})
}

// Upload handles POST /documents
// Accepts a multipart form with one or more "file" parts.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.Error(w, errors.TooLarge(h.maxUploadSize))
			return
		}
		httputil.Error(w, errors.Wrap(err, errors.BadRequest("invalid multipart form")))
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		httputil.Error(w, errors.BadRequest("missing file in request"))
		return
	}

	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			httputil.Error(w, errors.Wrap(err, errors.BadRequest("failed to open uploaded file "+fh.Filename)))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			appErr := errors.Wrap(err, errors.Internal("failed to read uploaded file"))
			h.log.Error().Err(appErr).Str("name", fh.Filename).Msg("failed to read upload")
			httputil.Error(w, appErr)
			return
		}
		uploads = append(uploads, domain.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	httputil.Created(w, h.service.AddDocuments(uploads))
}

// ListDocuments handles GET /documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.service.ListDocuments()
	for i := range docs {
		localizeDocument(r.Context(), &docs[i])
	}
	httputil.JSON(w, http.StatusOK, docs)
}

// GetDocument handles GET /documents/{id}
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetDocument(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, toAppError(err))
		return
	}
	localizeDocument(r.Context(), &doc)
	httputil.JSON(w, http.StatusOK, doc)
}

// RemoveDocument handles DELETE /documents/{id}
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveDocument(chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, toAppError(err))
		return
	}
	httputil.NoContent(w)
}

// ClearDocuments handles DELETE /documents
func (h *Handler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, ClearResponse{Removed: h.service.ClearAll()})
}

// ProcessBatch handles POST /batches
// Runs extraction over every pending document and returns the aggregate.
func (h *Handler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.ProcessPending(r.Context()))
}

// UpdateField handles PUT /documents/{id}/rows/{index}/fields
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("row index must be an integer"))
		return
	}

	var req UpdateFieldRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	issues, err := h.service.UpdateField(r.Context(), id, index, domain.Field(req.Field), req.Value)
	h.respondIssues(w, r, id, issues, err)
}

// VerifyRows handles PUT /documents/{id}/rows/verification
func (h *Handler) VerifyRows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req VerifyRowsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	issues, err := h.service.ToggleVerified(id, req.Indices, *req.Verified)
	h.respondIssues(w, r, id, issues, err)
}

// BatchReplace handles POST /documents/{id}/rows/replace
func (h *Handler) BatchReplace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req BatchReplaceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	issues, err := h.service.BatchReplace(id, req.Indices, domain.Field(req.Field), req.Find, req.Replace)
	h.respondIssues(w, r, id, issues, err)
}

// DeleteRows handles POST /documents/{id}/rows/delete
func (h *Handler) DeleteRows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DeleteRowsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	issues, err := h.service.DeleteRows(id, req.Indices)
	h.respondIssues(w, r, id, issues, err)
}

// ListFeedback handles GET /feedback
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.FeedbackEntries())
}

// FeedbackStats handles GET /feedback/stats
func (h *Handler) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.FeedbackStats())
}

// ClearFeedback handles DELETE /feedback
func (h *Handler) ClearFeedback(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearFeedback(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("failed to clear feedback")
		httputil.Error(w, errors.Unavailable("feedback store could not be cleared"))
		return
	}
	httputil.NoContent(w)
}

func (h *Handler) respondIssues(w http.ResponseWriter, r *http.Request, id string, issues []domain.ValidationIssue, err error) {
	if err != nil {
		httputil.Error(w, toAppError(err))
		return
	}
	httputil.JSON(w, http.StatusOK, IssuesResponse{
		DocumentID: id,
		Issues:     localizeIssues(r.Context(), issues),
	})
}

// localizeIssues rewrites issue messages for the request locale. English
// messages are produced by the validator already.
func localizeIssues(ctx context.Context, issues []domain.ValidationIssue) []domain.ValidationIssue {
	l := i18n.LocalizerFromContext(ctx)
	if l.Locale() == i18n.DefaultLocale {
		return issues
	}
	for i := range issues {
		key := "issues." + issues[i].Code
		if !l.Has(key) {
			continue
		}
		percent := strconv.Itoa(int(math.Round(issues[i].Confidence * 100)))
		issues[i].Message = l.T(key, map[string]string{"percent": percent})
	}
	return issues
}

func localizeDocument(ctx context.Context, doc *domain.Document) {
	doc.Issues = localizeIssues(ctx, doc.Issues)
	if doc.ErrorKind == "" {
		return
	}
	l := i18n.LocalizerFromContext(ctx)
	if key := "errors." + doc.ErrorKind; l.Locale() != i18n.DefaultLocale && l.Has(key) {
		doc.Error = l.T(key)
	}
}

func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := httputil.DecodeJSON(r, v); err != nil {
		return err
	}
	return httputil.Validate(v)
}

// toAppError maps service errors onto HTTP errors
func toAppError(err error) error {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		return errors.NotFound("document")
	case errors.Is(err, service.ErrRowOutOfRange), errors.Is(err, service.ErrInvalidPattern):
		return errors.BadRequest(err.Error())
	case errors.Is(err, service.ErrDocumentNotProcessed):
		return errors.Conflict(err.Error())
	case errors.Is(err, service.ErrUnknownField):
		return errors.Validation(map[string]string{"field": "must be a known form field"})
	default:
		return errors.Internal("an unexpected error occurred")
	}
}
