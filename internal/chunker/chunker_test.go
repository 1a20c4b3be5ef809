package chunker

import (
	"strings"
	"testing"
)

func TestPack_EmptyInput(t *testing.T) {
	if got := Pack(nil, DefaultOptions()); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	if got := Pack([]string{"", "   ", "\n"}, DefaultOptions()); got != "" {
		t.Errorf("expected empty for blank texts, got %q", got)
	}
}

func TestPack_JoinsInOrder(t *testing.T) {
	got := Pack([]string{" The latte was great. ", "", "Try the croissant."}, DefaultOptions())
	want := "The latte was great.\n\nTry the croissant."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPack_ZeroOptionsUseDefaults(t *testing.T) {
	got := Pack([]string{"a", "b"}, Options{})
	if got != "a\n\nb" {
		t.Errorf("expected default separator, got %q", got)
	}
}

func TestPack_RespectsMaxChars(t *testing.T) {
	review := strings.Repeat("The pho was rich and the broth was deep. ", 10) // ~420 chars
	texts := []string{review, review, review, review}
	opts := Options{MaxChars: 1000, Separator: "\n\n"}

	got := Pack(texts, opts)
	if len(got) > opts.MaxChars {
		t.Fatalf("packed length %d exceeds max %d", len(got), opts.MaxChars)
	}
	if !strings.HasPrefix(got, strings.TrimSpace(review)) {
		t.Errorf("first review should be kept whole")
	}
}

func TestPack_CutsOnSentenceBoundary(t *testing.T) {
	text := "Loved the dumplings. The noodles were cold and bland and overpriced"
	got := Pack([]string{text}, Options{MaxChars: 40})
	if got != "Loved the dumplings." {
		t.Errorf("expected sentence cut, got %q", got)
	}
}

func TestPack_CutsOnWordBoundary(t *testing.T) {
	text := "garlic bread with extra cheese and marinara"
	got := Pack([]string{text}, Options{MaxChars: 20})
	if got != "garlic bread with" {
		t.Errorf("expected word cut, got %q", got)
	}
}

func TestPack_DropsTextsAfterCut(t *testing.T) {
	got := Pack([]string{"first review here", "second review is longer", "third"}, Options{MaxChars: 30, Separator: " | "})
	if strings.Contains(got, "third") {
		t.Errorf("texts after the cut should be dropped, got %q", got)
	}
	if !strings.HasPrefix(got, "first review here | second") {
		t.Errorf("unexpected packing %q", got)
	}
}

func TestPack_MultibyteSafe(t *testing.T) {
	text := strings.Repeat("é", 20) // 40 bytes, no boundaries
	got := Pack([]string{text}, Options{MaxChars: 7})
	if len(got) > 7 {
		t.Fatalf("length %d exceeds limit", len(got))
	}
	for _, r := range got {
		if r != 'é' {
			t.Fatalf("broken rune in %q", got)
		}
	}
}
