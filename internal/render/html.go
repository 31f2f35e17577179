package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"

	"bookrec/internal/book"
)

var cardsTmpl = template.Must(template.New("cards").Parse(`<div class="grid">
{{- range . }}
<div class="card">
{{- if .Thumbnail }}
<a href="{{ .ImageLink }}"><img src="{{ .Thumbnail }}" alt="{{ .Title }}"></a>
{{- else }}
<div class="noimage">No Image</div>
{{- end }}
<h2>{{ .Title }}</h2>
{{- if .Authors }}
<p class="authors">{{ .Authors }}</p>
{{- end }}
{{- if .Similarity }}
<p class="similarity">Similarity: {{ .Similarity }}</p>
{{- end }}
{{- if .PreviewLink }}
<a class="preview" href="{{ .PreviewLink }}">View Preview</a>
{{- end }}
</div>
{{- end }}
</div>`))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Heading }}</title>
<style>
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(220px,1fr));gap:2rem}
.card img{width:100%;height:16rem;object-fit:cover}
.noimage{height:16rem;display:flex;align-items:center;justify-content:center;background:#444;color:#aaa}
</style>
</head>
<body>
<h1>{{ .Heading }}</h1>
{{ .Cards }}
</body>
</html>
`))

// cardView flattens optional fields for the template; empty means absent.
type cardView struct {
	Title       string
	Authors     string
	Similarity  string
	Thumbnail   string
	PreviewLink string
	ImageLink   string
}

func newCardView(b book.Book) cardView {
	th := b.Thumbnail.Or("")
	return cardView{
		Title:       b.Title,
		Authors:     b.Authors.Or(""),
		Similarity:  b.SimilarityLabel(),
		Thumbnail:   th,
		PreviewLink: b.PreviewLink.Or(""),
		ImageLink:   b.PreviewLink.Or(th),
	}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// HTML writes a standalone page with one card per book. Remote strings
// pass through html/template and then a bluemonday policy, so the page
// never carries scripts or non-http links from the service.
func HTML(w io.Writer, heading string, books []book.Book) error {
	cards := make([]cardView, 0, len(books))
	for _, b := range books {
		cards = append(cards, newCardView(b))
	}

	var frag bytes.Buffer
	if err := cardsTmpl.Execute(&frag, cards); err != nil {
		return fmt.Errorf("render cards: %w", err)
	}
	safe := newPolicy().SanitizeBytes(frag.Bytes())

	return pageTmpl.Execute(w, struct {
		Heading string
		Cards   template.HTML
	}{heading, template.HTML(safe)})
}
