package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const analysisPrompt = `You are a medical records assistant. Read the attached medical document image and respond with JSON only, using this shape:
{
  "extractedText": "all legible text from the document",
  "summary": "a short plain-language summary for a patient",
  "insights": [{"kind": "medication|condition|advice|followup|general", "text": "one observation"}]
}
Do not include any commentary outside the JSON.`

// GeminiClient analyzes document images with a Gemini multimodal model.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string, extra ...option.ClientOption) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, extra...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Analyze(ctx context.Context, data []byte, mimeType string) (Analysis, error) {
	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(analysisPrompt),
	)
	if err != nil {
		return Analysis{}, fmt.Errorf("generate content: %w", err)
	}
	raw := collectText(resp)
	if strings.TrimSpace(raw) == "" {
		return Analysis{}, errors.New("empty model response")
	}
	return parseResponse(raw), nil
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}
