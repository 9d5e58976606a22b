package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cleanvid/internal/services"
)

func writeLexicon(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swears.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSplitsPipeEntries(t *testing.T) {
	path := writeLexicon(t, "damn|dammit\nhell\n\n# comment\ngod damn\n")
	lex, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, want := range []string{"damn", "dammit", "hell", "god damn"} {
		if !lex.Contains(want) {
			t.Errorf("expected %q in lexicon", want)
		}
	}
	if lex.Contains("# comment") || lex.Contains("") {
		t.Error("comments and blanks must not be listed")
	}
}

func TestLoadNormalizesEntries(t *testing.T) {
	path := writeLexicon(t, "DAMN!|Hell's\n")
	lex, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !lex.Contains("damn") {
		t.Error("expected punctuation stripped and lowercased")
	}
	if !lex.Contains("hell's") {
		t.Error("internal apostrophes must survive normalization")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestLoadExceptionsEmptyPath(t *testing.T) {
	lex, err := LoadExceptions("")
	if err != nil {
		t.Fatalf("empty path should load empty set: %v", err)
	}
	if len(lex) != 0 {
		t.Fatalf("expected empty set, got %v", lex)
	}
}
