package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"medvault-backend/internal/thumbnail"
)

// extractTimeout caps a single provider call. A request that runs past
// this is treated as transient and may be retried.
const extractTimeout = 10 * time.Second

// VisionClient extracts text with the Google Cloud Vision document
// detection endpoint.
type VisionClient struct {
	svc *vision.Service
}

func NewVisionClient(ctx context.Context, apiKey string, extra ...option.ClientOption) (*VisionClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("vision api key is required")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, extra...)
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	return &VisionClient{svc: svc}, nil
}

func (c *VisionClient) ExtractText(ctx context.Context, data []byte, mimeType string) (Result, error) {
	if !thumbnail.IsImage(mimeType) {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(data)},
			Features: []*vision.Feature{{Type: "DOCUMENT_TEXT_DETECTION"}},
		}},
	}
	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return Result{}, classifyProviderError(err)
	}
	if len(resp.Responses) == 0 {
		return Result{}, &APIError{StatusCode: http.StatusBadGateway, Message: "empty annotate response"}
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return Result{}, classifyStatus(annotated.Error)
	}
	return resultFromAnnotation(annotated), nil
}

func resultFromAnnotation(annotated *vision.AnnotateImageResponse) Result {
	full := annotated.FullTextAnnotation
	if full == nil || strings.TrimSpace(full.Text) == "" {
		// No text regions means nothing to be uncertain about.
		return Result{Text: "", Confidence: 100}
	}

	var sum float64
	var words int
	var language string
	for _, page := range full.Pages {
		if language == "" && page.Property != nil {
			for _, lang := range page.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					language = lang.LanguageCode
					break
				}
			}
		}
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					sum += word.Confidence
					words++
				}
			}
		}
	}
	confidence := 100.0
	if words > 0 {
		confidence = sum / float64(words) * 100
	}
	return Result{Text: full.Text, Confidence: confidence, Language: language}
}

func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", ErrQuota, apiErr.Message)
		}
		return &APIError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return err
}

func classifyStatus(status *vision.Status) error {
	msg := status.Message
	switch status.Code {
	case 8: // RESOURCE_EXHAUSTED
		return fmt.Errorf("%w: %s", ErrQuota, msg)
	case 4: // DEADLINE_EXCEEDED
		return ErrTimeout
	case 13, 14: // INTERNAL, UNAVAILABLE
		return &APIError{StatusCode: http.StatusServiceUnavailable, Message: msg}
	default:
		return &APIError{StatusCode: http.StatusBadRequest, Message: msg}
	}
}
