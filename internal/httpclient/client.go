// Package httpclient talks to the upstream media API.
//
// It forwards the caller's access token and request id, encodes JSON and
// multipart bodies, and turns non-2xx responses into *ResponseError values.
// It never retries.
package httpclient

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
	"net/url"
	"strings"
	"time"

	"github.com/tenantdesk/mediagate/internal/middleware"
	"github.com/tenantdesk/mediagate/internal/models"
	"go.uber.org/zap"
)

// APIKeyHeader authenticates mediagate itself to the media API
const APIKeyHeader = "X-API-Key"

// Client is a thin JSON/multipart client for the media API
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// FilePart represents one file part of a multipart body
type FilePart struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
}

// Multipart represents a multipart/form-data body
type Multipart struct {
	Fields []models.FormField
	Files  []FilePart
}

// RequestOptions describes one call. Body and Multipart are mutually exclusive.
type RequestOptions struct {
	Method    string
	Query     url.Values
	Body      any
	Multipart *Multipart
}

// ResponseError represents a non-2xx answer of the media API.
// Message and Code are empty when the body did not carry them.
type ResponseError struct {
	Status  int
	Message string
	Code    string
}

func (e *ResponseError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.Status)
	}
	if e.Code == "" {
		return fmt.Sprintf("media api responded %d: %s", e.Status, message)
	}
	return fmt.Sprintf("media api responded %d: %s (%s)", e.Status, message, e.Code)
}

// NewClient creates a new media API client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Do performs one request and returns the response payload.
// A body of the form {"data": ...} is unwrapped. An empty body yields a nil payload.
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	if opts.Body != nil && opts.Multipart != nil {
		return nil, errors.New("request cannot carry both a JSON and a multipart body")
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	body, contentType, err := c.encodeBody(opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	if token := middleware.GetAccessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("media api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("media api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, payload)
	}

	return unwrap(payload), nil
}

func (c *Client) encodeBody(opts RequestOptions) (io.Reader, string, error) {
	switch {
	case opts.Multipart != nil:
		return encodeMultipart(opts.Multipart, c.logger)
	case opts.Body != nil:
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return nil, "", nil
	}
}

// encodeMultipart streams the form through a pipe so file contents are never buffered whole
func encodeMultipart(m *Multipart, logger *zap.Logger) (io.Reader, string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(writer, m)
		if err == nil {
			err = writer.Close()
		}
		if err != nil {
			logger.Warn("failed to encode multipart body", zap.Error(err))
		}
		pw.CloseWithError(err)
	}()

	return pr, writer.FormDataContentType(), nil
}

func writeMultipart(writer *multipart.Writer, m *Multipart) error {
	for _, field := range m.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", field.Name, err)
		}
	}

	for _, file := range m.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(file.FieldName), escapeQuotes(file.FileName)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("failed to create part for %s: %w", file.FileName, err)
		}
		if file.Content == nil {
			continue
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("failed to copy %s: %w", file.FileName, err)
		}
	}

	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

// parseError reads {"error": "...", "code": "..."} or {"message": "..."} bodies.
// An "error" object carrying its own message and code is accepted too.
func parseError(status int, payload []byte) *ResponseError {
	respErr := &ResponseError{Status: status}

	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		respErr.Code = body.Code
		respErr.Message = body.Message

		var text string
		var nested struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		switch {
		case len(body.Error) == 0:
		case json.Unmarshal(body.Error, &text) == nil:
			if text != "" {
				respErr.Message = text
			}
		case json.Unmarshal(body.Error, &nested) == nil:
			if nested.Message != "" {
				respErr.Message = nested.Message
			}
			if respErr.Code == "" {
				respErr.Code = nested.Code
			}
		}
	}

	return respErr
}

func unwrap(payload []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope) == 1 {
		if data, ok := envelope["data"]; ok {
			return data
		}
	}
	return json.RawMessage(trimmed)
}
