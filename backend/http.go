package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/ZaguanLabs/formlingo"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

const invalidShapeMessage = "Invalid response format from API. The JSON structure is incorrect."

// HTTPBackend implements Backend over the service's multipart HTTP contract.
type HTTPBackend struct {
	client    *http.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
}

// Config holds configuration for the HTTP backend.
type Config struct {
	BaseURL    string        // Service root (default: "http://localhost:8000")
	HTTPClient *http.Client  // Defaults to http.DefaultClient
	Timeout    time.Duration // Per-request timeout, 0 for none
	UserAgent  string        // Defaults to formlingo.UserAgent()
}

// NewHTTPBackend creates a new HTTP backend.
func NewHTTPBackend(cfg Config) *HTTPBackend {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = formlingo.UserAgent()
	}

	return &HTTPBackend{
		client:    client,
		baseURL:   baseURL,
		timeout:   cfg.Timeout,
		userAgent: userAgent,
	}
}

// BaseURL returns the configured service root.
func (b *HTTPBackend) BaseURL() string {
	return b.baseURL
}

// Translate posts the payload to /api/translate and validates the answer.
func (b *HTTPBackend) Translate(ctx context.Context, req TranslateRequest) (*formlingo.TranslationResult, error) {
	body, contentType, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/translate", body)
	if err != nil {
		return nil, &formlingo.TransportError{Message: "failed to build request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", b.userAgent)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, &formlingo.TransportError{Message: "request to translation service failed", Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &formlingo.TransportError{Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &formlingo.BackendError{
			Status:  resp.StatusCode,
			Message: errorDetail(data, resp.StatusCode),
		}
	}

	return decodeResult(data)
}

// Health checks GET /api/health.
func (b *HTTPBackend) Health(ctx context.Context) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/health", nil)
	if err != nil {
		return &formlingo.TransportError{Message: "failed to build request", Cause: err}
	}
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return &formlingo.TransportError{Message: "health check failed", Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &formlingo.BackendError{
			Status:  resp.StatusCode,
			Message: errorDetail(data, resp.StatusCode),
		}
	}
	return nil
}

func (b *HTTPBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return ctx, func() {}
}

// encodeRequest builds the multipart body. Exactly one of file or
// text_content is included, chosen by the payload kind.
func encodeRequest(req TranslateRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("target_language", req.TargetLanguage); err != nil {
		return nil, "", &formlingo.TransportError{Message: "failed to encode request", Cause: err}
	}
	if err := w.WriteField("input_type", string(req.Payload.Kind)); err != nil {
		return nil, "", &formlingo.TransportError{Message: "failed to encode request", Cause: err}
	}

	switch req.Payload.Kind {
	case formlingo.KindFile:
		file := req.Payload.File
		if file == nil {
			return nil, "", &formlingo.TransportError{Message: "file payload without a file"}
		}
		part, err := w.CreatePart(filePartHeader(file))
		if err != nil {
			return nil, "", &formlingo.TransportError{Message: "failed to encode request", Cause: err}
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", &formlingo.TransportError{Message: "failed to encode request", Cause: err}
		}
	case formlingo.KindText:
		if err := w.WriteField("text_content", req.Payload.Text); err != nil {
			return nil, "", &formlingo.TransportError{Message: "failed to encode request", Cause: err}
		}
	default:
		return nil, "", &formlingo.TransportError{Message: fmt.Sprintf("unknown input type %q", req.Payload.Kind)}
	}

	if err := w.Close(); err != nil {
		return nil, "", &formlingo.TransportError{Message: "failed to encode request", Cause: err}
	}
	return &buf, w.FormDataContentType(), nil
}

// quoteEscaper quotes a filename parameter. Line breaks become spaces so a
// name cannot end the header.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"", "\r", " ", "\n", " ")

// filePartHeader is CreateFormFile with the file's own content type.
func filePartHeader(file *formlingo.UploadedFile) textproto.MIMEHeader {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)
	return h
}

// errorDetail extracts the message of a failure body shaped {"detail": ...}.
func errorDetail(data []byte, status int) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil || body == nil {
		return "Unknown error"
	}

	raw, ok := body["detail"]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return fmt.Sprintf("HTTP error! status: %d", status)
	}

	var detail string
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail == "" {
			return fmt.Sprintf("HTTP error! status: %d", status)
		}
		return detail
	}
	// Validation failures carry a structured detail.
	return string(raw)
}

// decodeResult checks the three required members before decoding.
func decodeResult(data []byte) (*formlingo.TranslationResult, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, &formlingo.ResponseShapeError{Message: invalidShapeMessage, Cause: err}
	}

	if !isJSONKind(members["formTitle"], '"') ||
		!isJSONKind(members["sections"], '[') ||
		!isJSONKind(members["simplification"], '"') {
		return nil, &formlingo.ResponseShapeError{Message: invalidShapeMessage}
	}

	var result formlingo.TranslationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &formlingo.ResponseShapeError{Message: invalidShapeMessage, Cause: err}
	}
	return &result, nil
}

func isJSONKind(raw json.RawMessage, first byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == first
}

// Verify HTTPBackend implements Backend
var _ Backend = (*HTTPBackend)(nil)
