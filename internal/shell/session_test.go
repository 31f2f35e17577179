package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrec/internal/book"
	"bookrec/internal/source"
	"bookrec/internal/view"
)

// stubSource answers synchronously from fixed tables.
type stubSource struct {
	catalog    []book.Book
	catalogErr error
	recommend  map[string][]book.Book
	calls      []string
}

func (s *stubSource) Catalog(ctx context.Context) ([]book.Book, error) {
	return s.catalog, s.catalogErr
}

func (s *stubSource) Recommend(ctx context.Context, title string) ([]book.Book, error) {
	s.calls = append(s.calls, "recommend:"+title)
	books, ok := s.recommend[title]
	if !ok {
		return nil, &source.RemoteError{Endpoint: source.EndpointRecommend, Message: "book not found"}
	}
	return books, nil
}

func (s *stubSource) ByAuthor(ctx context.Context, name string) ([]book.Book, error) {
	s.calls = append(s.calls, "author:"+name)
	return []book.Book{{Title: "Emma", Authors: book.Some(name)}}, nil
}

func (s *stubSource) ByCategory(ctx context.Context, name string) ([]book.Book, error) {
	s.calls = append(s.calls, "category:"+name)
	return nil, nil
}

func (s *stubSource) Search(ctx context.Context, query string) ([]book.Book, error) {
	s.calls = append(s.calls, "search:"+query)
	return nil, errors.New("connection refused")
}

func newSession(t *testing.T, src *stubSource) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := New(view.New(src), &out)
	s.Start(context.Background())
	return s, &out
}

func catalogStub() *stubSource {
	return &stubSource{
		catalog: []book.Book{{Title: "Dune"}, {Title: "Dune Messiah"}, {Title: "Emma"}},
		recommend: map[string][]book.Book{
			"Dune": {{Title: "Dune Messiah", Similarity: book.Some(0.9)}},
		},
	}
}

func TestTitleUsesCatalogSpelling(t *testing.T) {
	src := catalogStub()
	s, out := newSession(t, src)

	assert.False(t, s.Execute(context.Background(), "  dune "))
	assert.Equal(t, []string{"recommend:Dune"}, src.calls)
	assert.Contains(t, out.String(), "Dune Messiah")
	assert.Contains(t, out.String(), "Similarity: 0.900")
	_, failed := s.Failed()
	assert.False(t, failed)
}

func TestRemoteErrorIsShown(t *testing.T) {
	s, out := newSession(t, catalogStub())

	s.Execute(context.Background(), "Unknown Book")
	assert.Contains(t, out.String(), "Error: book not found")
	msg, failed := s.Failed()
	assert.True(t, failed)
	assert.Equal(t, "book not found", msg)
}

func TestTransportErrorIsGeneric(t *testing.T) {
	s, out := newSession(t, catalogStub())

	s.Execute(context.Background(), "search:dune")
	assert.Contains(t, out.String(), "Error: "+view.GenericErrorMessage)
	assert.NotContains(t, out.String(), "connection refused")
}

func TestBrowseCommands(t *testing.T) {
	src := catalogStub()
	s, out := newSession(t, src)

	s.Execute(context.Background(), "author:Jane Austen")
	s.Execute(context.Background(), "category:poetry")
	assert.Equal(t, []string{"author:Jane Austen", "category:poetry"}, src.calls)
	assert.Contains(t, out.String(), "by Jane Austen")
	assert.Contains(t, out.String(), "No results found.")
}

func TestCatalogFailureWarns(t *testing.T) {
	src := catalogStub()
	src.catalogErr = errors.New("dial tcp: refused")
	s, out := newSession(t, src)

	assert.Contains(t, out.String(), "Warning: "+view.CatalogErrorMessage)
	assert.Empty(t, s.Complete("Du"))

	out.Reset()
	s.Execute(context.Background(), ":catalog")
	assert.Contains(t, out.String(), "The catalog is empty.")

	// the catalog error belongs to start-up, not to these commands
	for _, line := range []string{":catalog", "help"} {
		s.Execute(context.Background(), line)
		_, failed := s.Failed()
		assert.False(t, failed, line)
	}
}

func TestFailedTracksLastCommandOnly(t *testing.T) {
	s, _ := newSession(t, catalogStub())

	s.Execute(context.Background(), "Unknown Book")
	_, failed := s.Failed()
	require.True(t, failed)

	s.Execute(context.Background(), "Dune")
	_, failed = s.Failed()
	assert.False(t, failed)

	s.Execute(context.Background(), ":frobnicate")
	msg, failed := s.Failed()
	assert.True(t, failed)
	assert.Equal(t, "unknown command :frobnicate", msg)
}

func TestCatalogListing(t *testing.T) {
	s, out := newSession(t, catalogStub())

	s.Execute(context.Background(), ":catalog dune")
	assert.Contains(t, out.String(), "  Dune\n  Dune Messiah\n")
	assert.NotContains(t, out.String(), "Emma")
}

func TestExport(t *testing.T) {
	s, out := newSession(t, catalogStub())
	path := filepath.Join(t.TempDir(), "results.html")

	s.Execute(context.Background(), ":export "+path)
	assert.Contains(t, out.String(), "Nothing to export.")
	assert.NoFileExists(t, path)

	s.Execute(context.Background(), "Dune")
	s.Execute(context.Background(), ":export "+path)
	assert.Contains(t, out.String(), "Wrote 1 books to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Books similar to Dune")
	assert.Contains(t, string(data), "Dune Messiah")
}

func TestParseErrorIsReported(t *testing.T) {
	s, out := newSession(t, catalogStub())

	assert.False(t, s.Execute(context.Background(), ":frobnicate"))
	assert.Contains(t, out.String(), "Error: unknown command :frobnicate")
}

func TestExitAndHelp(t *testing.T) {
	s, out := newSession(t, catalogStub())

	assert.False(t, s.Execute(context.Background(), "help"))
	assert.Contains(t, out.String(), ":export <file.html>")
	assert.True(t, s.Execute(context.Background(), "exit"))
	assert.True(t, s.Execute(context.Background(), ":quit"))
}

func TestComplete(t *testing.T) {
	s, _ := newSession(t, catalogStub())

	assert.Equal(t, []string{"Dune", "Dune Messiah"}, s.Complete("du"))
	assert.Equal(t, []string{"title:Dune Messiah"}, s.Complete("title:messiah"))
	assert.Equal(t, []string{":exit ", ":export "}, s.Complete(":ex"))
	assert.Nil(t, s.Complete(""))
}
