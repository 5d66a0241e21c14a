package textutil

import "testing"

func TestNormalizeTitleIdempotent(t *testing.T) {
	inputs := []string{
		"The Pitt",
		"Breaking.Bad",
		"  It's Always   Sunny!  ",
		"1917",
		"Back to the Future (1985)",
		"",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("NormalizeTitle not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Pitt", "the pitt"},
		{"Breaking.Bad", "breaking bad"},
		{"It's Always Sunny", "it s always sunny"},
		{"Heat (1995)", "heat 1995"},
		{"   spaced   out   ", "spaced out"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "the pitt", "the pitt", 100},
		{"empty a", "", "the pitt", 0},
		{"empty b", "the pitt", "", 0},
		{"both empty", "", "", 100},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	a, b := "breaking bad", "breaking dad"
	if Ratio(a, b) != Ratio(b, a) {
		t.Errorf("Ratio not symmetric: %d vs %d", Ratio(a, b), Ratio(b, a))
	}
}

func TestRatioCloseStringsScoreHigh(t *testing.T) {
	got := Ratio("the pitt", "the pit")
	if got < 80 {
		t.Errorf("Ratio(the pitt, the pit) = %d, want >= 80", got)
	}
	if got == 100 {
		t.Error("distinct strings must not score 100")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Breaking Bad", "Breaking Bad"},
		{"Heat (1995)", "Heat (1995)"},
		{"What If...?", "What If"},
		{"AC/DC: Live", "AC-DC- Live"},
		{"  trailing dots...  ", "trailing dots"},
		{"a<b>c|d", "abcd"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
