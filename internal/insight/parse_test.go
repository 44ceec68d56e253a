package insight

import "testing"

func TestParseResponseJSON(t *testing.T) {
	raw := `{"extractedText":"Hb 11.2 g/dL","summary":"Mild anemia.","insights":[
		{"kind":"condition","text":"Hemoglobin slightly below range"},
		{"kind":"followup","text":"Repeat CBC in 3 months"}]}`
	analysis := parseResponse(raw)
	if analysis.ExtractedText != "Hb 11.2 g/dL" {
		t.Fatalf("unexpected extracted text %q", analysis.ExtractedText)
	}
	if analysis.Summary != "Mild anemia." {
		t.Fatalf("unexpected summary %q", analysis.Summary)
	}
	if len(analysis.Insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(analysis.Insights))
	}
	if analysis.Insights[0].Kind != KindCondition || analysis.Insights[1].Kind != KindFollowup {
		t.Fatalf("unexpected kinds: %+v", analysis.Insights)
	}
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"summary\":\"All values normal.\",\"insights\":[]}\n```"
	analysis := parseResponse(raw)
	if analysis.Summary != "All values normal." {
		t.Fatalf("unexpected summary %q", analysis.Summary)
	}
	if len(analysis.Insights) != 0 {
		t.Fatalf("expected no insights, got %d", len(analysis.Insights))
	}
}

func TestParseResponseProseFallsBackToSummary(t *testing.T) {
	raw := "This prescription lists amoxicillin 500mg three times daily."
	analysis := parseResponse(raw)
	if analysis.Summary != raw {
		t.Fatalf("expected prose to become the summary, got %q", analysis.Summary)
	}
	if analysis.Insights == nil || len(analysis.Insights) != 0 {
		t.Fatalf("expected empty insights slice, got %#v", analysis.Insights)
	}
}

func TestParseResponseNormalizesUnknownKinds(t *testing.T) {
	raw := `{"summary":"s","insights":[
		{"kind":"MEDICATION","text":"Amoxicillin"},
		{"kind":"something-else","text":"Drink water"},
		{"kind":"advice","text":""}]}`
	analysis := parseResponse(raw)
	if len(analysis.Insights) != 2 {
		t.Fatalf("expected empty-text insight dropped, got %d", len(analysis.Insights))
	}
	if analysis.Insights[0].Kind != KindMedication {
		t.Fatalf("expected medication kind, got %s", analysis.Insights[0].Kind)
	}
	if analysis.Insights[1].Kind != KindGeneral {
		t.Fatalf("expected unknown kind mapped to general, got %s", analysis.Insights[1].Kind)
	}
}
