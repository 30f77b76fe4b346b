package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"spaces only", "   \t  ", ""},
		{"leading and trailing", "  Dana Levi  ", "Dana Levi"},
		{"internal runs collapse", "Dana \t\n  Levi", "Dana Levi"},
		{"already clean", "Dana Levi", "Dana Levi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := NormalizeLabel("  Passover   Break "); got != "passover break" {
		t.Errorf("expected 'passover break', got %q", got)
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"control runes dropped", "prefers\x00 mornings\x07", "prefers mornings"},
		{"whitespace collapsed", "  bring   violin ", "bring violin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNotes(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	input := []string{" Dana ", "dana", "", "Noa"}
	got := SanitizeSlice(input, NormalizeLabel)
	expected := []string{"dana", "noa"}

	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"already e164", "+972501234567", "+972501234567"},
		{"local israeli", "050-123-4567", "+972501234567"},
		{"garbage", "not-a-phone", ""},
		{"parses but too short to dial", "12345", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
