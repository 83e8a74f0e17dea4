package clusterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"clusterview/internal/domain"
)

const (
	PreviewPath = "/preview"
	AnalyzePath = "/analyze"

	// RequestIDHeader carries the client-generated ID of every request.
	RequestIDHeader = "X-Request-ID"
)

// Client talks to the clustering service's preview and analyze endpoints.
type Client struct {
	baseURL string
	client  *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the service root the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

type previewResponse struct {
	Columns []domain.Column `json:"columns"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Preview uploads the file and returns the service's column classification.
func (c *Client) Preview(ctx context.Context, upload domain.Upload) ([]domain.Column, error) {
	var out previewResponse
	err := c.postMultipart(ctx, PreviewPath, upload, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Columns, nil
}

// Analyze uploads the file with k and the comma-joined feature list.
func (c *Client) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResult, error) {
	fields := [][2]string{
		{"k", strconv.Itoa(req.K)},
		{"features", strings.Join(req.Features, ",")},
	}
	var out domain.AnalyzeResult
	if err := c.postMultipart(ctx, AnalyzePath, req.Upload, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postMultipart(ctx context.Context, path string, upload domain.Upload, fields [][2]string, out any) error {
	body, contentType, err := encodeForm(upload, fields)
	if err != nil {
		return fmt.Errorf("build %s form: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	reqID := RequestIDFrom(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(path, resp.StatusCode, reqID, payload)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}
	return nil
}

// decodeAPIError turns a failed response into an APIError. A body without a
// JSON "error" field is a malformed reply and reported as a DecodeError.
func decodeAPIError(path string, status int, reqID string, payload []byte) error {
	var e errorResponse
	if err := json.Unmarshal(payload, &e); err != nil {
		return &DecodeError{Endpoint: path, Err: fmt.Errorf("status %d: %w", status, err)}
	}
	if e.Error == "" {
		return &DecodeError{Endpoint: path, Err: errors.New("status " + strconv.Itoa(status) + " without error message")}
	}
	return &APIError{StatusCode: status, Message: e.Error, RequestID: reqID}
}

func encodeForm(upload domain.Upload, fields [][2]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Name))
	ct := upload.MIME
	if ct == "" {
		ct = "text/csv"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that the client will send instead of
// generating one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID attached to ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
