package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for metadata extraction.
const DefaultModel = "gemini-2.5-flash"

const extractionPrompt = `Extract training metadata from screenshot.

## Fields

1. **title**: Training name below date (e.g., ` + "`訓練 A`, `肩復樂伸展`" + `)
2. **date**: Timestamp format ` + "`YYYY-MM-DD HH:MM:SS`" + `
3. **action_counts**: Integer under ` + "`完成動作數`" + `
4. **elapse_time**: Duration under ` + "`訓練時間`" + ` (e.g., ` + "`01:40.11`" + `)

## Output

Return ONLY raw JSON:

{
  "title": string,
  "date": string,
  "action_counts": number,
  "elapse_time": string
}

Use null for missing fields. Return ` + "`{ \"error\": \"Invalid image\" }`" + ` if not a training result.`

// GeminiExtractor extracts metadata with a Gemini vision call.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a metadata extractor backed by the Gemini
// API. An empty model selects DefaultModel.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract sends the image to Gemini and parses the JSON reply.
func (g *GeminiExtractor) Extract(ctx context.Context, imageData []byte, mimeType string) (*Record, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
				{Text: extractionPrompt},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := stripFences(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	var payload struct {
		Record
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("parse metadata JSON: %w\nraw response: %s", err, text)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("metadata extraction rejected image: %s", payload.Error)
	}

	rec := payload.Record
	return &rec, nil
}

// stripFences removes a markdown code fence if the model wrapped its
// JSON in one despite the prompt.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
