// Package format derives display strings from media assets
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tenantdesk/mediagate/internal/models"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with 1024-based units rounded to two decimals, e.g. "1.5 KB" or "1.33 MB"
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	rounded := math.Round(value*100) / 100
	return fmt.Sprintf("%s %s", strconv.FormatFloat(rounded, 'f', -1, 64), sizeUnits[unit])
}

// FormatSizes renders a size and its limit. When both round to the same label,
// exact byte counts are used so the two stay distinguishable.
func FormatSizes(size, limit int64) (string, string) {
	sizeLabel, limitLabel := FormatSize(size), FormatSize(limit)
	if sizeLabel == limitLabel && size != limit {
		return fmt.Sprintf("%d bytes", size), fmt.Sprintf("%d bytes", limit)
	}
	return sizeLabel, limitLabel
}

// Icon returns the icon name the dashboard shows for a MIME type
func Icon(mimeType string) string {
	mimeType = strings.ToLower(mimeType)

	switch {
	case mimeType == models.SvgMimeType:
		return "file-code"
	case strings.HasPrefix(mimeType, "image/"):
		return "file-image"
	case strings.HasPrefix(mimeType, "video/"):
		return "file-video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "file-audio"
	case strings.Contains(mimeType, "pdf"):
		return "file-pdf"
	case strings.Contains(mimeType, "word"):
		return "file-word"
	case strings.Contains(mimeType, "excel"), strings.Contains(mimeType, "sheet"), mimeType == "text/csv":
		return "file-spreadsheet"
	case strings.Contains(mimeType, "powerpoint"), strings.Contains(mimeType, "presentation"):
		return "file-presentation"
	case strings.Contains(mimeType, "zip"), strings.Contains(mimeType, "rar"),
		strings.Contains(mimeType, "7z"), strings.Contains(mimeType, "tar"),
		strings.Contains(mimeType, "compressed"):
		return "file-archive"
	case strings.HasPrefix(mimeType, "text/"):
		return "file-text"
	default:
		return "file"
	}
}

// TypeLabel returns a short human-readable label for a MIME type
func TypeLabel(mimeType string) string {
	mimeType = strings.ToLower(mimeType)

	switch {
	case mimeType == models.SvgMimeType:
		return "SVG"
	case strings.HasPrefix(mimeType, "image/"):
		return "Image"
	case strings.HasPrefix(mimeType, "video/"):
		return "Video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "Audio"
	case strings.Contains(mimeType, "pdf"):
		return "PDF"
	case strings.Contains(mimeType, "word"):
		return "Word"
	case strings.Contains(mimeType, "excel"), strings.Contains(mimeType, "sheet"):
		return "Spreadsheet"
	case mimeType == "text/csv":
		return "CSV"
	case strings.Contains(mimeType, "powerpoint"), strings.Contains(mimeType, "presentation"):
		return "Presentation"
	case strings.Contains(mimeType, "zip"), strings.Contains(mimeType, "rar"),
		strings.Contains(mimeType, "7z"), strings.Contains(mimeType, "tar"),
		strings.Contains(mimeType, "compressed"):
		return "Archive"
	case strings.HasPrefix(mimeType, "text/"):
		return "Text"
	case mimeType == "":
		return "File"
	default:
		if i := strings.LastIndexByte(mimeType, '/'); i >= 0 && i < len(mimeType)-1 {
			return strings.ToUpper(mimeType[i+1:])
		}
		return "File"
	}
}

// View decorates an asset with its display strings
func View(asset models.MediaAsset) models.MediaAssetView {
	return models.MediaAssetView{
		MediaAsset: asset,
		SizeLabel:  FormatSize(asset.Size),
		Icon:       Icon(asset.MimeType),
		TypeLabel:  TypeLabel(asset.MimeType),
	}
}

// Views decorates a list of assets
func Views(assets []models.MediaAsset) []models.MediaAssetView {
	views := make([]models.MediaAssetView, 0, len(assets))
	for _, asset := range assets {
		views = append(views, View(asset))
	}
	return views
}
