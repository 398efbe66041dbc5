package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tenantdesk/mediagate/internal/models"
)

const mb = 1024 * 1024

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "zero", bytes: 0, expected: "0 B"},
		{name: "negative", bytes: -5, expected: "0 B"},
		{name: "bytes", bytes: 512, expected: "512 B"},
		{name: "one and a half kilobytes", bytes: 1536, expected: "1.5 KB"},
		{name: "ten megabytes", bytes: 10 * 1024 * 1024, expected: "10 MB"},
		{name: "rounded", bytes: 1024*1024 + 1024*1024/3, expected: "1.33 MB"},
		{name: "gigabytes", bytes: 2 * 1024 * 1024 * 1024, expected: "2 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSize(tt.bytes))
		})
	}
}

func TestFormatSizes(t *testing.T) {
	tests := []struct {
		name          string
		size          int64
		limit         int64
		expectedSize  string
		expectedLimit string
	}{
		{name: "distinct labels", size: 11 * mb, limit: 10 * mb, expectedSize: "11 MB", expectedLimit: "10 MB"},
		{name: "one byte over", size: 10*mb + 1, limit: 10 * mb, expectedSize: "10485761 bytes", expectedLimit: "10485760 bytes"},
		{name: "equal sizes", size: 10 * mb, limit: 10 * mb, expectedSize: "10 MB", expectedLimit: "10 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, limit := FormatSizes(tt.size, tt.limit)
			assert.Equal(t, tt.expectedSize, size)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}

func TestIconAndTypeLabel(t *testing.T) {
	tests := []struct {
		mimeType      string
		expectedIcon  string
		expectedLabel string
	}{
		{mimeType: "image/png", expectedIcon: "file-image", expectedLabel: "Image"},
		{mimeType: "image/svg+xml", expectedIcon: "file-code", expectedLabel: "SVG"},
		{mimeType: "video/mp4", expectedIcon: "file-video", expectedLabel: "Video"},
		{mimeType: "audio/mpeg", expectedIcon: "file-audio", expectedLabel: "Audio"},
		{mimeType: "application/pdf", expectedIcon: "file-pdf", expectedLabel: "PDF"},
		{mimeType: "application/msword", expectedIcon: "file-word", expectedLabel: "Word"},
		{mimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", expectedIcon: "file-spreadsheet", expectedLabel: "Spreadsheet"},
		{mimeType: "text/csv", expectedIcon: "file-spreadsheet", expectedLabel: "CSV"},
		{mimeType: "application/vnd.ms-powerpoint", expectedIcon: "file-presentation", expectedLabel: "Presentation"},
		{mimeType: "application/zip", expectedIcon: "file-archive", expectedLabel: "Archive"},
		{mimeType: "text/plain", expectedIcon: "file-text", expectedLabel: "Text"},
		{mimeType: "application/json", expectedIcon: "file", expectedLabel: "JSON"},
		{mimeType: "", expectedIcon: "file", expectedLabel: "File"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.expectedIcon, Icon(tt.mimeType))
			assert.Equal(t, tt.expectedLabel, TypeLabel(tt.mimeType))
		})
	}
}

func TestView(t *testing.T) {
	asset := models.MediaAsset{ID: "1", MimeType: "application/pdf", Size: 2048}

	view := View(asset)

	assert.Equal(t, asset, view.MediaAsset)
	assert.Equal(t, "2 KB", view.SizeLabel)
	assert.Equal(t, "file-pdf", view.Icon)
	assert.Equal(t, "PDF", view.TypeLabel)

	assert.Len(t, Views([]models.MediaAsset{asset, asset}), 2)
	assert.Empty(t, Views(nil))
}
