package insight

import "context"

// Placeholder returns a canned analysis when no Gemini key is configured,
// keeping uploads flowing through the full pipeline in development.
type Placeholder struct{}

func (Placeholder) Analyze(ctx context.Context, data []byte, mimeType string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	return Analysis{
		Summary:  "Automated analysis is not configured for this environment.",
		Insights: []Insight{},
	}, nil
}
