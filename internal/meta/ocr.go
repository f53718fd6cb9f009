package meta

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

var (
	datePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(:\d{2})?`)
	elapsePattern = regexp.MustCompile(`\d{1,2}:\d{2}\.\d{2}`)
	countPattern  = regexp.MustCompile(`^\d{1,4}$`)
)

// OCRExtractor is the offline fallback when no Gemini key is
// configured: tesseract over the screenshot's header banner, with
// regex parsing of the date/duration/count fields.
type OCRExtractor struct {
	client *gosseract.Client
}

// NewOCRExtractor creates a tesseract-backed metadata extractor.
func NewOCRExtractor() (*OCRExtractor, error) {
	client := gosseract.NewClient()

	// Traditional Chinese app labels plus latin digits/timestamps
	if err := client.SetLanguage("chi_tra", "eng"); err != nil {
		// chi_tra training data may be absent; digits and timestamps
		// still come through with plain English.
		if err := client.SetLanguage("eng"); err != nil {
			client.Close()
			return nil, fmt.Errorf("set OCR language: %w", err)
		}
	}

	return &OCRExtractor{client: client}, nil
}

// Close releases OCR resources.
func (o *OCRExtractor) Close() error {
	if o.client != nil {
		return o.client.Close()
	}
	return nil
}

// Extract OCRs the image and parses the metadata fields it can find.
// Fields that do not parse stay at their zero value; only a total OCR
// failure is an error.
func (o *OCRExtractor) Extract(_ context.Context, imageData []byte, _ string) (*Record, error) {
	if err := o.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("set OCR image: %w", err)
	}
	if err := o.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("set OCR segmentation mode: %w", err)
	}

	text, err := o.client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	return parseHeaderText(text), nil
}

// parseHeaderText picks the metadata fields out of raw OCR output.
// The header layout is: timestamp line, then the training title, then
// labeled counters.
func parseHeaderText(text string) *Record {
	rec := &Record{}

	var leftover []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if rec.Date == "" {
			if m := datePattern.FindString(line); m != "" {
				rec.Date = normalizeDate(m)
				continue
			}
		}
		if rec.ElapseTime == "" {
			if m := elapsePattern.FindString(line); m != "" {
				rec.ElapseTime = m
				continue
			}
		}
		if rec.ActionCounts == 0 && countPattern.MatchString(line) {
			if n, err := strconv.Atoi(line); err == nil {
				rec.ActionCounts = n
				continue
			}
		}
		leftover = append(leftover, line)
	}

	// The title is the first line that matched no structured field and
	// follows the timestamp in the layout.
	if rec.Title == "" && len(leftover) > 0 {
		rec.Title = leftover[0]
	}
	return rec
}

// normalizeDate pads a timestamp missing seconds and swaps a T
// separator for a space.
func normalizeDate(s string) string {
	s = strings.Replace(s, "T", " ", 1)
	if len(s) == len("2006-01-02 15:04") {
		s += ":00"
	}
	return s
}
