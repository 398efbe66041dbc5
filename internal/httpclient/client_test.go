package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantdesk/mediagate/internal/middleware"
	"github.com/tenantdesk/mediagate/internal/models"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", "secret-key", time.Second, zap.NewNop())
}

func TestClient_Do_JSON(t *testing.T) {
	var captured *http.Request
	var capturedBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"42"}}`))
	})

	ctx := middleware.WithRequestID(context.Background(), "req-1")
	ctx = middleware.WithAccessToken(ctx, "token-abc")

	payload, err := client.Do(ctx, "/media/42", RequestOptions{
		Method: http.MethodPatch,
		Query:  url.Values{"expand": {"owner"}},
		Body:   map[string]string{"title": "x"},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42"}`, string(payload))
	assert.Equal(t, http.MethodPatch, captured.Method)
	assert.Equal(t, "/media/42", captured.URL.Path)
	assert.Equal(t, "owner", captured.URL.Query().Get("expand"))
	assert.Equal(t, "secret-key", captured.Header.Get(APIKeyHeader))
	assert.Equal(t, "Bearer token-abc", captured.Header.Get("Authorization"))
	assert.Equal(t, "req-1", captured.Header.Get(middleware.RequestIDHeader))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.Equal(t, "x", capturedBody["title"])
}

func TestClient_Do_NoEnvelopeAndEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plain":
			_, _ = w.Write([]byte(`{"data":[1],"total":1}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	payload, err := client.Do(context.Background(), "plain", RequestOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[1],"total":1}`, string(payload))

	payload, err = client.Do(context.Background(), "empty", RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestClient_Do_Multipart(t *testing.T) {
	var fields map[string][]string
	var fileNames []string
	var fileContent string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		for _, header := range r.MultipartForm.File["files[]"] {
			fileNames = append(fileNames, header.Filename)
			f, err := header.Open()
			require.NoError(t, err)
			data, _ := io.ReadAll(f)
			fileContent += string(data)
			_ = f.Close()
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	_, err := client.Do(context.Background(), "/media/bulk", RequestOptions{
		Method: http.MethodPost,
		Multipart: &Multipart{
			Fields: []models.FormField{{Name: "accessLevel", Value: "PUBLIC"}},
			Files: []FilePart{
				{FieldName: "files[]", FileName: "a.txt", ContentType: "text/plain", Content: strings.NewReader("aa")},
				{FieldName: "files[]", FileName: `b"quoted".txt`, Content: strings.NewReader("bb")},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"PUBLIC"}, fields["accessLevel"])
	assert.Equal(t, []string{"a.txt", `b"quoted".txt`}, fileNames)
	assert.Equal(t, "aabb", fileContent)
}

func TestClient_Do_Errors(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
		expectedCode    string
	}{
		{
			name:            "error string with code",
			status:          http.StatusUnprocessableEntity,
			body:            `{"error":"File too large","code":"FILE_TOO_LARGE"}`,
			expectedMessage: "File too large",
			expectedCode:    "FILE_TOO_LARGE",
		},
		{
			name:            "message field",
			status:          http.StatusNotFound,
			body:            `{"message":"Media not found"}`,
			expectedMessage: "Media not found",
		},
		{
			name:            "nested error object",
			status:          http.StatusForbidden,
			body:            `{"error":{"message":"Denied","code":"FORBIDDEN"}}`,
			expectedMessage: "Denied",
			expectedCode:    "FORBIDDEN",
		},
		{
			name:   "non json body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			payload, err := client.Do(context.Background(), "/media", RequestOptions{})

			assert.Nil(t, payload)
			var respErr *ResponseError
			require.True(t, errors.As(err, &respErr))
			assert.Equal(t, tt.status, respErr.Status)
			assert.Equal(t, tt.expectedMessage, respErr.Message)
			assert.Equal(t, tt.expectedCode, respErr.Code)
			assert.NotEmpty(t, respErr.Error())
		})
	}
}

func TestClient_Do_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewClient(server.URL, "", time.Second, zap.NewNop())

	_, err := client.Do(context.Background(), "/media", RequestOptions{})

	require.Error(t, err)
	var respErr *ResponseError
	assert.False(t, errors.As(err, &respErr))
}

func TestClient_Do_RejectsTwoBodies(t *testing.T) {
	client := NewClient("http://localhost", "", time.Second, zap.NewNop())

	_, err := client.Do(context.Background(), "/media", RequestOptions{
		Body:      map[string]string{},
		Multipart: &Multipart{},
	})

	assert.Error(t, err)
}
