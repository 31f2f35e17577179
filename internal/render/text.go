package render

import (
	"fmt"
	"io"
	"strings"

	"bookrec/internal/book"
	"bookrec/internal/view"
)

const (
	LoadingText  = "Finding the perfect books for you..."
	NoImageText  = "[No Image]"
	EmptyText    = "No results found."
	cardIndent   = "    "
	catalogWidth = 60
)

// Text renders the state: a busy line while loading, the message on
// error, otherwise one card per result.
func Text(w io.Writer, s view.State) error {
	if s.Status.IsLoading() {
		_, err := fmt.Fprintln(w, LoadingText)
		return err
	}
	if msg, ok := s.Status.Err(); ok {
		_, err := fmt.Fprintf(w, "Error: %s\n", msg)
		return err
	}
	return Cards(w, s.Results)
}

// Cards prints one block per book.
func Cards(w io.Writer, books []book.Book) error {
	var b strings.Builder
	for i, bk := range books {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, bk.Title)
		if a, ok := bk.Authors.Get(); ok {
			fmt.Fprintf(&b, "%sby %s\n", cardIndent, a)
		}
		if bk.Similarity.IsSet() {
			fmt.Fprintf(&b, "%sSimilarity: %s\n", cardIndent, bk.SimilarityLabel())
		}
		if th, ok := bk.Thumbnail.Get(); ok {
			fmt.Fprintf(&b, "%sCover: %s\n", cardIndent, link(th, bk.PreviewLink.Or(th)))
		} else {
			fmt.Fprintf(&b, "%s%s\n", cardIndent, NoImageText)
		}
		if p, ok := bk.PreviewLink.Get(); ok {
			fmt.Fprintf(&b, "%sPreview: %s\n", cardIndent, p)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// link wraps text in an OSC 8 hyperlink so terminals that support it make the cover clickable.
func link(text, target string) string {
	return "\x1b]8;;" + target + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

// Catalog lists titles one per line with a footer when the list is cut.
func Catalog(w io.Writer, titles []string, total int) error {
	var b strings.Builder
	for _, t := range titles {
		fmt.Fprintf(&b, "  %s\n", t)
	}
	if len(titles) < total {
		fmt.Fprintf(&b, "  ... %d of %d titles\n", len(titles), total)
	}
	b.WriteString(strings.Repeat("-", catalogWidth) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
