package util

import (
	"errors"
	"testing"
)

func TestHashText(t *testing.T) {
	got := HashText("Alice: hello")
	if got != HashText("Alice: hello") {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if got == HashText("Alice: hello ") {
		t.Fatalf("expected different inputs to hash differently")
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

func TestCheckPlainFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "plain", in: "analysis_2025-01-01T10-00-00.json", want: nil},
		{name: "empty", in: "", want: ErrEmptyFileName},
		{name: "traversal", in: "../../etc/passwd", want: ErrUnsafeFileName},
		{name: "dots only", in: "..", want: ErrUnsafeFileName},
		{name: "slash", in: "sub/file.json", want: ErrUnsafeFileName},
		{name: "backslash", in: `sub\file.json`, want: ErrUnsafeFileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckPlainFileName(tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("CheckPlainFileName(%q) = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName(" team/sync.docx ")
	if err != nil || got != "team_sync.docx" {
		t.Fatalf("SanitizeFileName = %q, %v", got, err)
	}
	if _, err := SanitizeFileName("../x.docx"); !errors.Is(err, ErrUnsafeFileName) {
		t.Fatalf("expected ErrUnsafeFileName, got %v", err)
	}
}
