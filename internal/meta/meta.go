// Package meta extracts the training metadata block (title, date,
// counters) from a result screenshot.
//
// This is the external collaborator channel of the diagnosis pipeline:
// its output is attached to each image as an opaque record and never
// reprocessed by the grid analysis. The primary extractor is a Gemini
// vision call; an OCR fallback covers deployments without an API key.
package meta

import "context"

// Record is the metadata extracted for one training-result image.
// Missing fields stay at their zero value.
type Record struct {
	Title        string `json:"title"`
	Date         string `json:"date"`          // "YYYY-MM-DD HH:MM:SS"
	ActionCounts int    `json:"action_counts"` // Completed motion count
	ElapseTime   string `json:"elapse_time"`   // e.g. "01:40.11"
}

// Extractor produces a metadata record from raw image bytes.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte, mimeType string) (*Record, error)
}

// MIMETypeForExt maps a file extension (with dot, lowercase) to the
// mime type sent to the extraction service.
func MIMETypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
