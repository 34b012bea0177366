package lang

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Code
	}{
		{"ar", Arabic},
		{" FR ", French},
		{"en-US", English},
		{"fr_CA", French},
		{"de", Code("de")},
		{"", Code("")},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOrDefault(t *testing.T) {
	if got := Code("de").OrDefault(); got != English {
		t.Errorf("de: got %q", got)
	}
	if got := Arabic.OrDefault(); got != Arabic {
		t.Errorf("ar: got %q", got)
	}
}
