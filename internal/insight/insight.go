// Package insight produces structured medical summaries from document images.
package insight

import "context"

// Kind tags a single insight so clients can render each class differently.
type Kind string

const (
	KindMedication Kind = "medication"
	KindCondition  Kind = "condition"
	KindAdvice     Kind = "advice"
	KindFollowup   Kind = "followup"
	KindGeneral    Kind = "general"
)

type Insight struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Analysis is the structured result of reading a medical document.
type Analysis struct {
	ExtractedText string    `json:"extractedText"`
	Summary       string    `json:"summary"`
	Insights      []Insight `json:"insights"`
}

type Client interface {
	Analyze(ctx context.Context, data []byte, mimeType string) (Analysis, error)
}
