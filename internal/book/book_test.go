package book

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		validate func(*testing.T, []Book)
	}{
		{
			name:  "Full Recommendation",
			input: `[{"title":"Dune","authors":"Frank Herbert","similarity":0.912,"thumbnail":"https://img/dune.jpg","preview_link":"https://preview/dune"}]`,
			validate: func(t *testing.T, books []Book) {
				require.Len(t, books, 1)
				b := books[0]
				assert.Equal(t, "Dune", b.Title)
				assert.Equal(t, Some("Frank Herbert"), b.Authors)
				assert.Equal(t, Some(0.912), b.Similarity)
				assert.Equal(t, Some("https://img/dune.jpg"), b.Thumbnail)
				assert.Equal(t, Some("https://preview/dune"), b.PreviewLink)
			},
		},
		{
			name:  "Catalog Entry",
			input: `[{"title":"Emma"}]`,
			validate: func(t *testing.T, books []Book) {
				require.Len(t, books, 1)
				assert.False(t, books[0].Authors.IsSet())
				assert.False(t, books[0].Similarity.IsSet())
				assert.False(t, books[0].Thumbnail.IsSet())
				assert.False(t, books[0].PreviewLink.IsSet())
			},
		},
		{
			name:  "Zero Similarity Is Present",
			input: `[{"title":"Zero","similarity":0}]`,
			validate: func(t *testing.T, books []Book) {
				s, ok := books[0].Similarity.Get()
				assert.True(t, ok)
				assert.Equal(t, 0.0, s)
				assert.Equal(t, "0.000", books[0].SimilarityLabel())
			},
		},
		{
			name:  "Null And Empty Are Absent",
			input: `[{"title":"Blank","authors":"","thumbnail":null,"preview_link":"","similarity":null}]`,
			validate: func(t *testing.T, books []Book) {
				assert.False(t, books[0].Authors.IsSet())
				assert.False(t, books[0].Thumbnail.IsSet())
				assert.False(t, books[0].PreviewLink.IsSet())
				assert.False(t, books[0].Similarity.IsSet())
				assert.Equal(t, "", books[0].SimilarityLabel())
			},
		},
		{
			name:  "Order Preserved",
			input: `[{"title":"B"},{"title":"A"},{"title":"C"}]`,
			validate: func(t *testing.T, books []Book) {
				require.Len(t, books, 3)
				assert.Equal(t, "B", books[0].Title)
				assert.Equal(t, "A", books[1].Title)
				assert.Equal(t, "C", books[2].Title)
			},
		},
		{
			name:  "Null Body",
			input: `null`,
			validate: func(t *testing.T, books []Book) {
				assert.NotNil(t, books)
				assert.Empty(t, books)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := DecodeList([]byte(tt.input))
			require.NoError(t, err)
			tt.validate(t, books)
		})
	}
}

func TestDecodeListRejectsMalformed(t *testing.T) {
	for _, in := range []string{`{"error":"x"}`, `[{"authors":"No Title"}]`, `[{"title":""}]`, `not json`} {
		_, err := DecodeList([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestMarshalUsesTransportNames(t *testing.T) {
	b := Book{Title: "Dune", Similarity: Some(0.5), PreviewLink: Some("https://p")}
	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Dune","similarity":0.5,"preview_link":"https://p"}`, string(out))
}

func TestOptional(t *testing.T) {
	assert.Equal(t, "fallback", None[string]().Or("fallback"))
	assert.Equal(t, "set", Some("set").Or("fallback"))
	v, ok := None[int]().Get()
	assert.False(t, ok)
	assert.Zero(t, v)
}
