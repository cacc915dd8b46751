package sanitizer

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Jane   Doe  ", "Jane Doe"},
		{"Jane Doe", "Jane Doe"},
		{"\tJane\nDoe\t", "Jane Doe"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.input); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Jane.Doe@Example.COM ", "jane.doe@example.com"},
		{"a@x.com", "a@x.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeEmail(tt.input); got != tt.want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"e164 passthrough", "+14155552671", "+14155552671"},
		{"international with separators", "+1 (415) 555-2671", "+14155552671"},
		{"local form kept as-is", "053-1234567", "053-1234567"},
		{"too short kept as-is", "12345", "12345"},
		{"empty", "", ""},
		{"whitespace trimmed", "  +14155552671  ", "+14155552671"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPipelineOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}
	if got := p.Apply("x"); got != "xab" {
		t.Errorf("Pipeline.Apply order wrong: got %q", got)
	}
}
