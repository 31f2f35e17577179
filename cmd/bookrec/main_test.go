package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrec/internal/book"
	"bookrec/internal/shell"
	"bookrec/internal/view"
)

func TestRunReturnsOneOnSetupError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))
	t.Setenv("BOOKREC_CONFIG", path)

	assert.Equal(t, 1, run())
}

// ctxSource fails every call once its context is done.
type ctxSource struct{}

func (ctxSource) Catalog(ctx context.Context) ([]book.Book, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (ctxSource) Recommend(ctx context.Context, title string) ([]book.Book, error) {
	return []book.Book{{Title: "Dune Messiah"}}, nil
}

func (ctxSource) ByAuthor(ctx context.Context, name string) ([]book.Book, error) {
	return nil, nil
}

func (ctxSource) ByCategory(ctx context.Context, name string) ([]book.Book, error) {
	return nil, nil
}

func (ctxSource) Search(ctx context.Context, query string) ([]book.Book, error) {
	return nil, nil
}

func TestAbandonedCatalogLoadKeepsShellUsable(t *testing.T) {
	var out bytes.Buffer
	sess := shell.New(view.New(ctxSource{}), &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start(ctx, sess)
	assert.Contains(t, out.String(), "Warning: "+view.CatalogErrorMessage)

	assert.False(t, sess.Execute(context.Background(), "Dune"))
	assert.Contains(t, out.String(), "Dune Messiah")
	_, failed := sess.Failed()
	assert.False(t, failed)
}
