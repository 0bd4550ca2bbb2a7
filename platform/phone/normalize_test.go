package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"national number gets country code", "55 1234 5678", "+525512345678"},
		{"already e164", "+525512345678", "+525512345678"},
		{"foreign number kept as e164", "+31612345678", "+31612345678"},
		{"garbage returned trimmed", "  not-a-number ", "not-a-number"},
		{"empty stays empty", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input); got != tc.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
