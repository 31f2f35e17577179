package book

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrNoTitle is returned when a transport object has no usable title.
var ErrNoTitle = errors.New("book without title")

// Book is a catalog entry or a recommendation. Values are immutable once decoded.
type Book struct {
	Title       string
	Authors     Optional[string]
	Similarity  Optional[float64]
	Thumbnail   Optional[string]
	PreviewLink Optional[string]
}

// wireBook is the transport shape; absent, null and empty text all map to None.
type wireBook struct {
	Title       string   `json:"title"`
	Authors     *string  `json:"authors,omitempty"`
	Similarity  *float64 `json:"similarity,omitempty"`
	Thumbnail   *string  `json:"thumbnail,omitempty"`
	PreviewLink *string  `json:"preview_link,omitempty"`
}

func (b *Book) UnmarshalJSON(data []byte) error {
	var w wireBook
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Title == "" {
		return ErrNoTitle
	}
	*b = Book{
		Title:       w.Title,
		Authors:     textFrom(w.Authors),
		Similarity:  optionalFrom(w.Similarity),
		Thumbnail:   textFrom(w.Thumbnail),
		PreviewLink: textFrom(w.PreviewLink),
	}
	return nil
}

func (b Book) MarshalJSON() ([]byte, error) {
	w := wireBook{Title: b.Title}
	if v, ok := b.Authors.Get(); ok {
		w.Authors = &v
	}
	if v, ok := b.Similarity.Get(); ok {
		w.Similarity = &v
	}
	if v, ok := b.Thumbnail.Get(); ok {
		w.Thumbnail = &v
	}
	if v, ok := b.PreviewLink.Get(); ok {
		w.PreviewLink = &v
	}
	return json.Marshal(w)
}

// SimilarityLabel renders the score with three decimals, or "" when absent.
func (b Book) SimilarityLabel() string {
	s, ok := b.Similarity.Get()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.3f", s)
}

// DecodeList decodes a JSON array of books. A null body decodes to an empty list.
func DecodeList(data []byte) ([]Book, error) {
	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}
