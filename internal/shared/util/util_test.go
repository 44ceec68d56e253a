package util

import "testing"

func TestHashUserKey(t *testing.T) {
	id := "user-12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestFormatMB(t *testing.T) {
	cases := map[int64]string{
		0:            "0.00MB",
		5 << 20:      "5.00MB",
		100 << 20:    "100.00MB",
		1<<20 + 1<<19: "1.50MB",
	}
	for bytes, want := range cases {
		if got := FormatMB(bytes); got != want {
			t.Fatalf("FormatMB(%d) = %q, want %q", bytes, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("lab/report 2024.pdf")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "lab_report 2024.pdf" {
		t.Fatalf("unexpected result %q", got)
	}

	if _, err := SanitizeFileName("../../etc/passwd"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatal("expected blank name to be rejected")
	}
}
