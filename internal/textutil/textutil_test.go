package textutil

import "testing"

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello,", "hello"},
		{"he'll", "he'll"},
		{"DAMN!", "damn"},
		{"son-of-a-gun", "son-of-a-gun"},
		{"'quoted'", "quoted"},
		{"...", ""},
		{"god damn", "god damn"},
		{"God, damn!", "god damn"},
	}
	for _, tt := range tests {
		if got := NormalizeWord(tt.input); got != tt.expected {
			t.Errorf("NormalizeWord(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Go to HELL!", "go to hell"},
		{"Line 1\nLine 2", "line 1 line 2"},
		{"  extra   spaces  ", "extra spaces"},
		{"don't stop", "don't stop"},
	}
	for _, tt := range tests {
		if got := NormalizeLine(tt.input); got != tt.expected {
			t.Errorf("NormalizeLine(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestContainsWord(t *testing.T) {
	if !ContainsWord("go to hell", "hell") {
		t.Error("expected hell to match in line")
	}
	if ContainsWord("a passing grade", "ass") {
		t.Error("substring of a longer word must not match")
	}
	if !ContainsWord("god damn it", "god damn") {
		t.Error("expected phrase match on word boundaries")
	}
}

func TestStemSimilarity(t *testing.T) {
	a := "Apollo.13.1995.REMASTERED.1080p"
	b := "Apollo 13 (1995) English"
	if got := StemSimilarity(a, b); got <= 0.3 {
		t.Errorf("expected related stems to score above 0.3, got %f", got)
	}
	if got := StemSimilarity("completely", "unrelated"); got != 0 {
		t.Errorf("expected unrelated stems to score 0, got %f", got)
	}
}
