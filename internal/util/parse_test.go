package util

import "testing"

func TestNormalizeCurrency(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"USD", "USD", true},
		{"usd", "USD", true},
		{" eur ", "EUR", true},
		{"US", "", false},
		{"USDD", "", false},
		{"U5D", "", false},
		{"", "", false},
		{"$", "", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeCurrency(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("NormalizeCurrency(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"120", 120, true},
		{"1,299.00", 1299, true},
		{"$120", 120, true},
		{" 99.95 ", 99.95, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"free", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParsePrice(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParsePrice(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 140); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}

	long := ""
	for i := 0; i < 150; i++ {
		long += "a"
	}
	got := Truncate(long, 140)
	if len([]rune(got)) != 143 { // 140 runes + "..."
		t.Errorf("Expected 143 runes, got %d", len([]rune(got)))
	}

	// Rune-aware: must not split multi-byte characters
	got = Truncate("héllo wörld", 5)
	if got != "héllo..." {
		t.Errorf("Truncate(héllo wörld, 5) = %q", got)
	}
}
