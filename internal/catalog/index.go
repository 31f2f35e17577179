// Package catalog offers title suggestions over the fetched catalog.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"bookrec/internal/book"
)

// Normalize folds case, strips accents and punctuation and collapses
// whitespace, the same cleaning the recommendation service applies to titles.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	s = cases.Fold().String(s)

	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

type entry struct {
	title string
	key   string
}

// Index is an immutable suggestion index; build a new one when the catalog changes.
type Index struct {
	entries []entry
}

// NewIndex keeps catalog order and drops duplicate titles.
func NewIndex(books []book.Book) *Index {
	idx := &Index{entries: make([]entry, 0, len(books))}
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		if _, dup := seen[b.Title]; dup {
			continue
		}
		seen[b.Title] = struct{}{}
		idx.entries = append(idx.entries, entry{title: b.Title, key: Normalize(b.Title)})
	}
	return idx
}

func (i *Index) Len() int { return len(i.entries) }

// Suggest returns up to limit titles: prefix matches first, then substring
// matches, each group in catalog order. An empty input matches everything.
func (i *Index) Suggest(input string, limit int) []string {
	q := Normalize(input)
	var prefix, contains []string
	for _, e := range i.entries {
		switch {
		case strings.HasPrefix(e.key, q):
			prefix = append(prefix, e.title)
		case strings.Contains(e.key, q):
			contains = append(contains, e.title)
		}
		if limit > 0 && len(prefix) >= limit {
			break
		}
	}
	out := append(prefix, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Lookup returns the catalog spelling of a title that normalizes like input.
func (i *Index) Lookup(input string) (string, bool) {
	q := Normalize(input)
	if q == "" {
		return "", false
	}
	for _, e := range i.entries {
		if e.key == q {
			return e.title, true
		}
	}
	return "", false
}
