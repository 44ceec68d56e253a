package insight

import (
	"encoding/json"
	"strings"
)

type rawAnalysis struct {
	ExtractedText string       `json:"extractedText"`
	Summary       string       `json:"summary"`
	Insights      []rawInsight `json:"insights"`
}

type rawInsight struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// parseResponse turns model output into an Analysis. Models wrap JSON in
// code fences or fall back to prose, so parsing never fails: output that
// is not valid JSON becomes the summary verbatim.
func parseResponse(raw string) Analysis {
	trimmed := stripFences(raw)
	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return Analysis{Summary: strings.TrimSpace(raw), Insights: []Insight{}}
	}
	out := Analysis{
		ExtractedText: strings.TrimSpace(parsed.ExtractedText),
		Summary:       strings.TrimSpace(parsed.Summary),
		Insights:      make([]Insight, 0, len(parsed.Insights)),
	}
	for _, item := range parsed.Insights {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		out.Insights = append(out.Insights, Insight{Kind: normalizeKind(item.Kind), Text: text})
	}
	return out
}

func normalizeKind(kind string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindMedication:
		return KindMedication
	case KindCondition:
		return KindCondition
	case KindAdvice:
		return KindAdvice
	case KindFollowup:
		return KindFollowup
	default:
		return KindGeneral
	}
}

func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language hint on the opening fence, e.g. ```json.
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
