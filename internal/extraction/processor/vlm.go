package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
)

// Image magic bytes accepted by the vision service
var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// maxErrorBody bounds how much of a failed response ends up in the error
const maxErrorBody = 512

// VLMExtractor sends form images to the vision service and reads back rows
// with per-field confidence and bounding boxes.
type VLMExtractor struct {
	visionURL  string
	httpClient *http.Client
}

// NewVLMExtractor creates an extractor calling the vision service at visionURL
func NewVLMExtractor(visionURL string, timeout time.Duration) *VLMExtractor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &VLMExtractor{
		visionURL: strings.TrimRight(visionURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout, // multi-form pages take a while
		},
	}
}

func (p *VLMExtractor) Name() string { return "vlm" }

func (p *VLMExtractor) CanExtract(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func (p *VLMExtractor) Extract(ctx context.Context, data []byte, contentType string) (*domain.ExtractionResult, error) {
	if !isImageData(data) {
		return nil, newError(KindInvalidInput, "vlm: file must be an image (JPEG, PNG or WEBP)")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "form.bin")
	if err != nil {
		return nil, newError(KindUnknown, "vlm: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, newError(KindUnknown, "vlm: write image data: %w", err)
	}
	if err := writer.WriteField("fields", strings.Join(fieldNames(), ",")); err != nil {
		return nil, newError(KindUnknown, "vlm: write fields: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, newError(KindUnknown, "vlm: close multipart writer: %w", err)
	}

	url := p.visionURL + "/api/v1/forms/extract"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, newError(KindConfig, "vlm: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &ExtractionError{Kind: KindNetwork, Err: fmt.Errorf("vlm: vision service request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, "vlm: read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(respBody)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, newError(kindForStatus(resp.StatusCode), "vlm: vision service returned %d: %s", resp.StatusCode, snippet)
	}

	var visionResp visionExtractionResponse
	if err := json.Unmarshal(respBody, &visionResp); err != nil {
		return nil, newError(KindMalformed, "vlm: parse response: %w", err)
	}

	return visionResp.toResult()
}

// kindForStatus classifies a non-200 vision service response
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindConfig
	case status == http.StatusTooManyRequests:
		return KindQuota
	case status == http.StatusBadRequest || status == http.StatusUnsupportedMediaType ||
		status == http.StatusUnprocessableEntity || status == http.StatusRequestEntityTooLarge:
		return KindInvalidInput
	case status >= 500:
		return KindNetwork
	default:
		return KindUnknown
	}
}

// isImageData checks for JPEG, PNG or WEBP magic bytes at the start of the data
func isImageData(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	if bytes.HasPrefix(data, jpegMagic) || bytes.HasPrefix(data, pngMagic) {
		return true
	}
	return len(data) >= 12 && bytes.HasPrefix(data, riffMagic) && bytes.Equal(data[8:12], webpMagic)
}

func fieldNames() []string {
	names := make([]string, len(domain.Fields))
	for i, f := range domain.Fields {
		names[i] = string(f)
	}
	return names
}

// visionExtractionResponse mirrors the vision service's form extraction payload
type visionExtractionResponse struct {
	Forms            []visionForm          `json:"forms"`
	ProcessedPreview string                `json:"processed_preview"`
	ImageDimensions  *domain.Dimensions    `json:"image_dimensions"`
	QualityReport    *domain.QualityReport `json:"quality_report"`
	ProcessingTimeMs int64                 `json:"processing_time_ms"`
}

type visionForm struct {
	Fields     map[string]string    `json:"fields"`
	Confidence map[string]float64   `json:"confidence"`
	Boxes      map[string]visionBox `json:"boxes"`
}

type visionBox struct {
	Box  []float64 `json:"box"`
	Page int       `json:"page"`
}

func (v *visionExtractionResponse) toResult() (*domain.ExtractionResult, error) {
	if v.Forms == nil {
		return nil, newError(KindMalformed, "vlm: invalid response structure: missing forms")
	}

	rows := make([]domain.RawRow, len(v.Forms))
	for i, f := range v.Forms {
		rows[i] = f.toRawRow()
	}

	return &domain.ExtractionResult{
		Rows:             rows,
		ProcessedPreview: v.ProcessedPreview,
		Dimensions:       v.ImageDimensions,
		Quality:          v.QualityReport,
		ProcessingTimeMs: v.ProcessingTimeMs,
	}, nil
}

// toRawRow keeps only canonical fields. Confidence is clamped to 0..1 and
// boxes without exactly four coordinates are dropped.
func (f visionForm) toRawRow() domain.RawRow {
	row := domain.RawRow{
		Values:     make(map[domain.Field]string, len(domain.Fields)),
		Confidence: make(map[domain.Field]float64),
		Boxes:      make(map[domain.Field]domain.BoundingBox),
	}

	for _, field := range domain.Fields {
		key := string(field)
		row.Values[field] = f.Fields[key]

		if c, ok := f.Confidence[key]; ok {
			row.Confidence[field] = max(0, min(1, c))
		}

		if b, ok := f.Boxes[key]; ok && len(b.Box) == 4 {
			row.Boxes[field] = domain.BoundingBox{
				Quad: [4]float64{b.Box[0], b.Box[1], b.Box[2], b.Box[3]},
				Page: b.Page,
			}
		}
	}

	return row
}
