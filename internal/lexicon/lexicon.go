// Package lexicon loads the swear word list and the exception list.
package lexicon

import (
	"bufio"
	"os"
	"strings"

	"cleanvid/internal/services"
	"cleanvid/internal/textutil"
)

// Lexicon is a set of normalized words and phrases to mute.
type Lexicon map[string]struct{}

// Contains reports whether the normalized word or phrase is listed.
func (l Lexicon) Contains(term string) bool {
	_, ok := l[term]
	return ok
}

// Words returns the listed entries in no particular order.
func (l Lexicon) Words() []string {
	out := make([]string, 0, len(l))
	for word := range l {
		out = append(out, word)
	}
	return out
}

// Load reads a lexicon file. Each line holds one or more entries
// separated by "|". Entries are normalized before insertion; blank
// lines and lines starting with "#" are ignored.
func Load(path string) (Lexicon, error) {
	return load(path, "lexicon.load")
}

// LoadExceptions reads an exception list in the same format.
func LoadExceptions(path string) (Lexicon, error) {
	if path == "" {
		return Lexicon{}, nil
	}
	return load(path, "lexicon.load_exceptions")
}

func load(path, operation string) (Lexicon, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "", operation, "open file", err)
		}
		return nil, services.Wrap(services.ErrTransient, "", operation, "open file", err)
	}
	defer file.Close()

	set := Lexicon{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, entry := range strings.Split(line, "|") {
			normalized := normalizeEntry(entry)
			if normalized == "" {
				continue
			}
			set[normalized] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrFormat, "", operation, "scan file", err)
	}
	return set, nil
}

func normalizeEntry(entry string) string {
	parts := strings.Fields(entry)
	for i, part := range parts {
		parts[i] = textutil.NormalizeWord(part)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
