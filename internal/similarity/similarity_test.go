package similarity

import "testing"

func TestRatio(t *testing.T) {
	m := NewSequenceMatcher()

	if got := m.Ratio("uber trip", "uber trip"); got != 1.0 {
		t.Errorf("identical strings: got %v", got)
	}
	if got := m.Ratio("", ""); got != 1.0 {
		t.Errorf("two empty strings: got %v", got)
	}
	if got := m.Ratio("uber trip", ""); got != 0.0 {
		t.Errorf("one empty string: got %v", got)
	}

	near := m.Ratio("uber trip 123", "uber trip 456")
	if near < 0.7 {
		t.Errorf("near-identical strings scored %v", near)
	}
	far := m.Ratio("uber trip", "padaria central")
	if far >= near {
		t.Errorf("unrelated strings scored %v, near strings %v", far, near)
	}
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Uber   Trip  ", "uber trip"},
		{"MERCADO\tCENTRAL", "mercado central"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDescription(tt.in); got != tt.want {
			t.Errorf("NormalizeDescription(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
